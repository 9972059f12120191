// Package api 브로드캐스트 서비스를 REST API로 노출하는 HTTP 서버를 제공합니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/darkkaiser/broadcast-server/internal/config"
	"github.com/darkkaiser/broadcast-server/internal/pkg/version"
	"github.com/darkkaiser/broadcast-server/internal/service/api/auth"
	"github.com/darkkaiser/broadcast-server/internal/service/api/constants"
	"github.com/darkkaiser/broadcast-server/internal/service/api/handler/system"
	v1 "github.com/darkkaiser/broadcast-server/internal/service/api/v1"
	v1handler "github.com/darkkaiser/broadcast-server/internal/service/api/v1/handler"
	"github.com/darkkaiser/broadcast-server/internal/service/contract"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// Service REST API 서버의 생명주기를 관리합니다.
//
// Start로 시작하면 별도 고루틴에서 HTTP 서버를 띄우고, serviceStopCtx가 취소되면
// 진행 중인 요청을 최대 constants.ShutdownTimeout 동안 기다린 뒤 종료합니다.
type Service struct {
	appConfig *config.AppConfig

	broadcastService contract.BroadcastService

	buildInfo version.Info

	// listener 테스트에서 임의 포트로 서버를 띄우기 위해 주입한다. nil이면 설정의 포트를 사용한다.
	listener net.Listener

	running   bool
	runningMu sync.Mutex
}

// NewService Service 인스턴스를 생성합니다.
func NewService(appConfig *config.AppConfig, broadcastService contract.BroadcastService, buildInfo version.Info) *Service {
	if appConfig == nil {
		panic(constants.PanicMsgAppConfigRequired)
	}
	if broadcastService == nil {
		panic(constants.PanicMsgBroadcastServiceRequired)
	}

	return &Service{
		appConfig: appConfig,

		broadcastService: broadcastService,

		buildInfo: buildInfo,
	}
}

// Start API 서버를 시작합니다. 이 함수는 즉시 반환됩니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarting)

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(constants.ComponentService).Warn(constants.LogMsgServiceAlreadyStarted)
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarted)

	return nil
}

func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer Echo 서버를 생성하고 라우트를 등록합니다.
func (s *Service) setupServer() *echo.Echo {
	authenticator := auth.NewAuthenticator(s.appConfig)

	systemHandler := system.NewHandler(s.broadcastService, s.buildInfo)
	v1Handler := v1handler.NewHandler(s.broadcastService)

	e := NewHTTPServer(HTTPServerConfig{
		Debug:        s.appConfig.Debug,
		AllowOrigins: s.appConfig.API.AllowOrigins,
	})

	RegisterRoutes(e, systemHandler)
	v1.RegisterRoutes(e, v1Handler, authenticator)

	return e
}

// startHTTPServer 서버가 종료될 때까지 블록되며, 종료되면 done을 닫습니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	var err error
	if s.listener != nil {
		applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
			"address": s.listener.Addr().String(),
		}).Debug(constants.LogMsgServiceHTTPServerStarting)

		e.Listener = s.listener
		err = e.Start("")
	} else {
		port := s.appConfig.API.ListenPort
		applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
			"port": port,
		}).Debug(constants.LogMsgServiceHTTPServerStarting)

		err = e.Start(fmt.Sprintf(":%d", port))
	}

	s.handleServerError(err)
}

func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceHTTPServerStopped)
		return
	}

	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port":  s.appConfig.API.ListenPort,
		"error": err,
	}).Error(constants.LogMsgServiceHTTPServerFatalError)
}

// waitForShutdown 종료 신호 또는 서버의 조기 종료를 기다린 뒤 정리합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopping)

	case <-httpServerDone:
		// 포트 바인딩 실패 등으로 서버가 먼저 종료된 경우
		applog.WithComponent(constants.ComponentService).Error(constants.LogMsgServiceUnexpectedExit)

		s.cleanup()

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
			"error": err,
		}).Error(constants.LogMsgServiceHTTPServerShutdownError)
	}

	<-httpServerDone

	s.cleanup()
}

func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopped)
}
