package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-peersh/pkg/lib/log"
)

var logger = log.Logger("metrics")

// Server 指标 HTTP 端点
//
// 暴露 /metrics（Prometheus 格式）与 /health。
type Server struct {
	server *http.Server
}

// NewServer 创建指标端点
func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start 启动端点（后台监听）
func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("指标端点退出", "error", err)
		}
	}()
	logger.Info("指标端点已启动", "addr", s.server.Addr)
}

// Stop 关闭端点
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
