package httpclient

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/url"
	"time"

	"MatchPublisher/internal/config"

	"github.com/sirupsen/logrus"
)

// NewHTTPClient Bot API 使用的 HTTP 客户端（支持代理、超时、gzip 解压）
// 超时必须大于长轮询超时，否则 getUpdates 会被客户端提前掐断
func NewHTTPClient(cfg *config.TelegramConfig, logger *logrus.Logger) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // 由 gzipTransport 负责
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			logger.WithError(err).WithField("proxy", cfg.Proxy).Warn("代理地址解析失败，将不使用代理")
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
			logger.WithField("proxy", proxyURL.Host).Info("Bot API 客户端已配置代理")
		}
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if floor := time.Duration(cfg.PollTimeout+10) * time.Second; timeout < floor {
		timeout = floor
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &gzipTransport{transport: transport, logger: logger},
	}
}

type gzipTransport struct {
	transport http.RoundTripper
	logger    *logrus.Logger
}

func (g *gzipTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := g.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			g.logger.WithError(err).Warn("gzip解压失败，返回原始响应")
			return resp, nil
		}
		resp.Body = &gzipReadCloser{Reader: gzReader, closer: resp.Body}
		resp.Header.Del("Content-Encoding")
		resp.Header.Del("Content-Length")
		resp.ContentLength = -1
	}
	return resp, nil
}

// gzipReadCloser 关闭时同时释放解压器与原始响应体
type gzipReadCloser struct {
	*gzip.Reader
	closer io.ReadCloser
}

func (g *gzipReadCloser) Close() error {
	if err := g.Reader.Close(); err != nil {
		_ = g.closer.Close()
		return err
	}
	return g.closer.Close()
}
