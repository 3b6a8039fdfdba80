package testframework

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// WriteConfig writes a key=value config file, optionally followed by a
// [sectionName] block. Keys are sorted so files are reproducible.
func WriteConfig(filename string, config map[string]string, regtestConfig map[string]string, sectionName string) error {
	var b strings.Builder
	writeSorted(&b, config)
	if regtestConfig != nil {
		fmt.Fprintf(&b, "[%s]\n", sectionName)
		writeSorted(&b, regtestConfig)
	}
	return os.WriteFile(filename, []byte(b.String()), 0o644)
}

func writeSorted(b *strings.Builder, config map[string]string) {
	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%s=%s\n", k, config[k])
	}
}

// ReadConfig reads a key=value config file. Section headers are ignored so
// keys of all sections end up in one map.
func ReadConfig(filename string) (map[string]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	conf := map[string]string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		conf[parts[0]] = parts[1]
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return conf, nil
}

func copyConfig(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
