package eclair

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/elementsproject/lightning-integration/node"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// APIError is the error body eclair sends with a non 2xx status.
type APIError struct {
	Status  int
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eclair api: %d %s", e.Status, e.Message)
}

type api struct {
	BaseURL      string
	password     string
	logger       *zap.Logger
	httpClient   *retryablehttp.Client
	interceptors []InterceptorFunc
}

func NewAPI(baseURL, password string) *api {
	return &api{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		password:   password,
		logger:     zap.NewNop(),
		httpClient: defaultHttpClient(),
	}
}

func (a *api) do(req *http.Request) (*http.Response, error) {
	e := a.call
	is := a.interceptors
	for i := len(is) - 1; i >= 0; i-- {
		e = is[i](e)
	}
	return e(req)
}

func (a *api) call(req *http.Request) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// eclair only checks the password
	req.SetBasicAuth("", a.password)
	rReq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create api request")
	}
	res, err := a.httpClient.Do(rReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call api request")
	}
	return res, nil
}

func (a *api) drain(res *http.Response) {
	defer func() {
		_ = res.Body.Close()
	}()
	_, err := io.Copy(io.Discard, res.Body)
	if err != nil {
		a.logger.Warn("failed to drain response body")
	}
}

// post calls an api method with form parameters and decodes the json
// answer into resp. resp may be nil.
func (a *api) post(ctx context.Context, method string, params url.Values, resp interface{}) error {
	var body io.Reader
	if params != nil {
		body = strings.NewReader(params.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/"+method, body)
	if err != nil {
		return errors.Wrap(err, "failed to build api request")
	}
	res, err := a.do(req)
	if err != nil {
		if ctx.Err() != nil {
			return node.FromContext(method, ctx.Err())
		}
		return node.Unavailable(method, err)
	}
	defer a.drain(res)

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return node.Protocol(method, "authorization failed: incorrect password")
	case res.StatusCode >= http.StatusBadRequest:
		apiErr := &APIError{Status: res.StatusCode}
		if err := json.NewDecoder(res.Body).Decode(apiErr); err != nil {
			apiErr.Message = http.StatusText(res.StatusCode)
		}
		return apiErr
	}

	if resp == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(resp); err != nil {
		return node.Protocol(method, "%v", err)
	}
	a.logger.Debug("api response", zap.String("method", method))
	return nil
}
