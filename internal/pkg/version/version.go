// Package version 빌드 시점에 주입된 버전 정보와 실행 환경 정보를 제공합니다.
//
// 릴리스 빌드는 -ldflags 로 값을 주입합니다.
//
//	go build -ldflags "-X github.com/darkkaiser/broadcast-server/internal/pkg/version.appVersion=v1.2.0 \
//	  -X github.com/darkkaiser/broadcast-server/internal/pkg/version.buildNumber=87"
//
// 주입된 값이 없으면 Go 모듈의 VCS 메타데이터(vcs.revision, vcs.time, vcs.modified)로 보강합니다.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

const unknown = "unknown"

// -ldflags 주입 대상. 직접 읽지 말고 Get()을 사용한다.
var (
	appVersion    = ""
	gitCommitHash = ""
	gitTreeState  = ""
	buildDate     = ""
	buildNumber   = ""
)

// Info 애플리케이션의 빌드 정보입니다.
type Info struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	BuildDate   string `json:"build_date"`
	BuildNumber string `json:"build_number"`
	GoVersion   string `json:"go_version"`
	OS          string `json:"os"`
	Arch        string `json:"arch"`
	DirtyBuild  bool   `json:"dirty_build"`
}

var (
	mu      sync.RWMutex
	current *Info
)

// Get 현재 빌드 정보를 반환합니다. 처음 호출될 때 주입된 값과 VCS 메타데이터로 초기화됩니다.
func Get() Info {
	mu.RLock()
	if current != nil {
		defer mu.RUnlock()
		return *current
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		bi := resolve(injected(), debug.ReadBuildInfo)
		current = &bi
	}
	return *current
}

// Set 빌드 정보를 교체합니다. 테스트나 별도 빌드 도구에서 사용합니다.
func Set(bi Info) {
	mu.Lock()
	defer mu.Unlock()

	current = &bi
}

// Version 애플리케이션의 버전 문자열을 반환합니다.
func Version() string {
	return Get().Version
}

func injected() Info {
	return Info{
		Version:     strings.TrimSpace(appVersion),
		Commit:      strings.TrimSpace(gitCommitHash),
		BuildDate:   strings.TrimSpace(buildDate),
		BuildNumber: strings.TrimSpace(buildNumber),
		DirtyBuild:  strings.EqualFold(strings.TrimSpace(gitTreeState), "dirty"),
	}
}

// resolve 비어 있는 필드를 실행 환경과 VCS 메타데이터로 채웁니다.
// readBuildInfo 를 인자로 받아 테스트에서 메타데이터를 바꿔 넣을 수 있습니다.
func resolve(bi Info, readBuildInfo func() (*debug.BuildInfo, bool)) Info {
	if bi.GoVersion == "" {
		bi.GoVersion = runtime.Version()
	}
	if bi.OS == "" {
		bi.OS = runtime.GOOS
	}
	if bi.Arch == "" {
		bi.Arch = runtime.GOARCH
	}

	if meta, ok := readBuildInfo(); ok && meta != nil {
		for _, s := range meta.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.BuildDate == "" {
					bi.BuildDate = s.Value
				}
			case "vcs.modified":
				bi.DirtyBuild = bi.DirtyBuild || s.Value == "true"
			}
		}
		if bi.Version == "" && meta.Main.Version != "" && meta.Main.Version != "(devel)" {
			bi.Version = meta.Main.Version
		}
	}

	if bi.Version == "" {
		bi.Version = unknown
	}
	if bi.Commit == "" {
		bi.Commit = unknown
	}
	if bi.BuildDate == "" {
		bi.BuildDate = unknown
	}
	if bi.BuildNumber == "" {
		bi.BuildNumber = "0"
	}

	return bi
}

// Fields 구조화 로그에 그대로 넣을 수 있는 형태로 반환합니다.
func (i Info) Fields() map[string]any {
	return map[string]any{
		"version":      i.Version,
		"commit":       i.Commit,
		"build_date":   i.BuildDate,
		"build_number": i.BuildNumber,
		"go_version":   i.GoVersion,
		"os":           i.OS,
		"arch":         i.Arch,
		"dirty_build":  i.DirtyBuild,
	}
}

// String 사람이 읽기 위한 한 줄 요약입니다. 예: v1.2.0+dirty (commit: f25b8bf, build: 87, go1.24.0 linux/amd64)
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = unknown
	}
	if i.DirtyBuild {
		v += "+dirty"
	}

	var details []string
	if i.Commit != "" && i.Commit != unknown {
		commit := i.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		details = append(details, "commit: "+commit)
	}
	if i.BuildNumber != "" && i.BuildNumber != "0" {
		details = append(details, "build: "+i.BuildNumber)
	}
	if i.GoVersion != "" {
		details = append(details, fmt.Sprintf("%s %s/%s", i.GoVersion, i.OS, i.Arch))
	}

	if len(details) == 0 {
		return v
	}
	return fmt.Sprintf("%s (%s)", v, strings.Join(details, ", "))
}
