package eclair

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

type Option struct {
	ConnTimeout  time.Duration
	ReadTimeOut  time.Duration
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RetryMax     int
}

// LogWrapper adapts zap to retryablehttp.LeveledLogger.
type LogWrapper struct {
	logger *zap.Logger
}

func (l *LogWrapper) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, keysAndValues...)
}

func (l *LogWrapper) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Infow(msg, keysAndValues...)
}

func (l *LogWrapper) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l *LogWrapper) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Warnw(msg, keysAndValues...)
}

var _ retryablehttp.LeveledLogger = (*LogWrapper)(nil)

func (a *api) WithLogger(logger *zap.Logger) *api {
	a.logger = logger
	a.httpClient.Logger = &LogWrapper{logger: logger}
	return a
}

func (a *api) WithOption(option *Option) *api {
	setHttpClientOption(a.httpClient, option)
	return a
}

type (
	InterceptorFunc    func(RequestHandlerFunc) RequestHandlerFunc
	RequestHandlerFunc func(*http.Request) (*http.Response, error)
)

func (a *api) WithInterceptors(is ...InterceptorFunc) *api {
	a.interceptors = is
	return a
}

// logRequests logs every api call with its status and duration.
func logRequests(logger *zap.Logger) InterceptorFunc {
	return func(next RequestHandlerFunc) RequestHandlerFunc {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			res, err := next(req)
			fields := []zap.Field{
				zap.String("path", req.URL.Path),
				zap.Duration("took", time.Since(start)),
			}
			if err != nil {
				logger.Debug("api call failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			logger.Debug("api call", append(fields, zap.Int("status", res.StatusCode))...)
			return res, nil
		}
	}
}

// /payinvoice with blocking=true only answers once the payment settled,
// so reads get more time than connects.
func defaultOption() *Option {
	return &Option{
		ConnTimeout:  10 * time.Second,
		ReadTimeOut:  60 * time.Second,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 1 * time.Second,
		RetryMax:     3,
	}
}

func defaultHttpClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.HTTPClient = &http.Client{}
	c.Backoff = retryablehttp.LinearJitterBackoff
	c.ErrorHandler = nil
	c.Logger = nil
	c.CheckRetry = checkRetry
	setHttpClientOption(c, defaultOption())
	return c
}

// checkRetry only retries requests that never got an answer. eclair
// methods are not idempotent.
func checkRetry(ctx context.Context, res *http.Response, err error) (bool, error) {
	doRetry, err := retryablehttp.ErrorPropagatedRetryPolicy(ctx, res, err)
	if doRetry && res != nil {
		return false, nil
	}
	return doRetry, err
}

func setHttpClientOption(c *retryablehttp.Client, o *Option) {
	if o.ConnTimeout > 0 {
		c.HTTPClient.Transport = transportWithTimeout(o.ConnTimeout)
	}
	if o.ReadTimeOut > 0 {
		c.HTTPClient.Timeout = o.ReadTimeOut
	}
	if o.RetryWaitMin > 0 {
		c.RetryWaitMin = o.RetryWaitMin
	}
	if o.RetryWaitMax > 0 {
		c.RetryWaitMax = o.RetryWaitMax
	}
	c.RetryMax = o.RetryMax
}

func transportWithTimeout(d time.Duration) *http.Transport {
	dtp, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil
	}
	tp := dtp.Clone()
	dial := &net.Dialer{Timeout: d, KeepAlive: 30 * time.Second}
	tp.DialContext = (dial).DialContext
	return tp
}
