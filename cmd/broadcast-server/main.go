package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/darkkaiser/broadcast-server/internal/config"
	"github.com/darkkaiser/broadcast-server/internal/pkg/version"
	"github.com/darkkaiser/broadcast-server/internal/remote"
	"github.com/darkkaiser/broadcast-server/internal/service"
	"github.com/darkkaiser/broadcast-server/internal/service/api"
	"github.com/darkkaiser/broadcast-server/internal/service/broadcast"
	"github.com/darkkaiser/broadcast-server/internal/service/event"
	"github.com/darkkaiser/broadcast-server/internal/service/progress"
	applog "github.com/darkkaiser/broadcast-server/pkg/log"
)

const component = "main"

// remoteHealthCheckTimeout 시작 시 원격 서비스 연결 확인에 사용하는 제한 시간
const remoteHealthCheckTimeout = 10 * time.Second

const banner = `
  ____                      _                 _
 | __ ) _ __ ___   __ _  __| | ___ __ _ ___| |_
 |  _ \| '__/ _ \ / _' |/ _' |/ __/ _' / __| __|
 | |_) | | | (_) | (_| | (_| | (_| (_| \__ \ |_
 |____/|_|  \___/ \__,_|\__,_|\___\__,_|___/\__|
                                        %s
--------------------------------------------------------------------------------
`

func main() {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	configFile := config.DefaultFilename
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}

	appConfig, err := config.LoadWithFile(configFile)
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	appLogCloser, err := applog.Setup(newLogOptions(appConfig))
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 3. 로그 레벨 최종 확정
	applog.SetDebugMode(appConfig.Debug)

	buildInfo := version.Get()
	fmt.Printf(banner, buildInfo.Version)

	applog.WithComponentAndFields(component, applog.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	for _, warning := range appConfig.VerifyRecommendations() {
		applog.WithComponent(component).Warn(warning)
	}

	if err := run(appConfig, buildInfo, waitForSignal); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("서비스 초기화 실패로 프로그램을 종료합니다")

		appLogCloser.Close()
		os.Exit(1)
	}
}

func newLogOptions(appConfig *config.AppConfig) applog.Options {
	if appConfig.Debug {
		return applog.NewDevelopmentOptions(config.AppName)
	}
	return applog.NewProductionOptions(config.AppName)
}

// run 서비스들을 조립해 시작하고, wait가 반환되면 모든 서비스를 종료한 뒤 반환합니다.
func run(appConfig *config.AppConfig, buildInfo version.Info, wait func()) error {
	remoteClient, err := remote.NewClient(appConfig.Remote)
	if err != nil {
		return err
	}
	checkRemoteHealth(remoteClient)

	eventBus := event.NewBus()
	eventBus.Subscribe(event.LogSubscriber)

	progressTracker := progress.NewTracker()

	broadcastService := broadcast.NewService(appConfig, broadcast.NewIDGenerator(), remoteClient, progressTracker, eventBus)
	apiService := api.NewService(appConfig, broadcastService, buildInfo)

	// 이벤트 버스를 가장 먼저 시작해 서비스가 발행하는 이벤트를 놓치지 않는다.
	// 종료는 역순이므로 이벤트 버스는 브로드캐스트 서비스가 완전히 멈춘 뒤에 닫힌다.
	started, err := startServices([]service.Service{eventBus, broadcastService, apiService})
	if err != nil {
		return err
	}

	applog.WithComponent(component).Info("서버 가동 완료")

	wait()

	applog.WithComponent(component).Info("Shutdown signal received")

	stopServices(started)

	remoteClient.CloseIdleConnections()

	return nil
}

// runningService 시작된 서비스 하나의 중지 수단입니다.
type runningService struct {
	stop context.CancelFunc
	wg   *sync.WaitGroup
}

// startServices 서비스를 순서대로 시작합니다. 서비스마다 별도의 중지 컨텍스트를 사용하며,
// 하나라도 시작에 실패하면 이미 시작된 서비스를 역순으로 중지하고 에러를 반환합니다.
func startServices(services []service.Service) ([]runningService, error) {
	started := make([]runningService, 0, len(services))

	for _, s := range services {
		serviceStopCtx, cancel := context.WithCancel(context.Background())
		serviceStopWG := &sync.WaitGroup{}

		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			cancel()
			serviceStopWG.Wait()

			stopServices(started)
			return nil, err
		}

		started = append(started, runningService{stop: cancel, wg: serviceStopWG})
	}

	return started, nil
}

// stopServices 시작의 역순으로 서비스를 하나씩 중지하고, 완전히 멈출 때까지 기다린 뒤 다음 서비스를 중지합니다.
func stopServices(started []runningService) {
	for i := len(started) - 1; i >= 0; i-- {
		started[i].stop()
		started[i].wg.Wait()
	}
}

// checkRemoteHealth 원격 서비스에 연결할 수 없어도 서버는 시작한다. 작성기는 실패 후 재시도할 수 있다.
func checkRemoteHealth(client *remote.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), remoteHealthCheckTimeout)
	defer cancel()

	if err := client.CheckHealth(ctx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Warn("원격 서비스 상태 확인 실패: 연결이 복구될 때까지 브로드캐스트 전송이 실패할 수 있습니다")
		return
	}

	applog.WithComponent(component).Info("원격 서비스 연결 확인 완료")
}

func waitForSignal() {
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(termC)

	<-termC
}
