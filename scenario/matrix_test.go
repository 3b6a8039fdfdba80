package scenario

import (
	"testing"

	"github.com/elementsproject/lightning-integration/node"
	"github.com/stretchr/testify/assert"
)

func TestProduct(t *testing.T) {
	kinds := []node.Kind{node.KindLnd, node.KindEclair}

	assert.Equal(t, [][]node.Kind{
		{node.KindLnd, node.KindLnd},
		{node.KindLnd, node.KindEclair},
		{node.KindEclair, node.KindLnd},
		{node.KindEclair, node.KindEclair},
	}, Pairs(kinds))

	assert.Len(t, Product(node.AllKinds, 3), 125)
	assert.Equal(t, [][]node.Kind{{node.KindLnd}, {node.KindEclair}}, Product(kinds, 1))
	assert.Nil(t, Product(kinds, 0))
	assert.Nil(t, Product(nil, 2))
}

func TestIDFor(t *testing.T) {
	assert.Equal(t, "lnd_eclair", IDFor([]node.Kind{node.KindLnd, node.KindEclair}))
	assert.Equal(t, "lightningd_lnd_ptarmigan", IDFor([]node.Kind{node.KindCLightning, node.KindLnd, node.KindPtarmigan}))
	assert.Equal(t, "electrum", IDFor([]node.Kind{node.KindElectrum}))
}
