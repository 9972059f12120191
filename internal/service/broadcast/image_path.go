package broadcast

import (
	"path/filepath"
	"strings"
)

// resolveImagePath dir 기준으로 p를 해석한 절대 경로를 반환합니다.
// 상대 경로는 dir 아래에서 해석하며, 정리된 결과가 dir 내부의 파일이 아니면 false를 반환합니다.
// dir은 절대 경로여야 합니다.
func resolveImagePath(dir, p string) (string, bool) {
	var path string
	if filepath.IsAbs(p) {
		path = filepath.Clean(p)
	} else {
		path = filepath.Join(dir, p)
	}

	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return path, true
}
