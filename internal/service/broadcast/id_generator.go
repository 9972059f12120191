package broadcast

import (
	"sync/atomic"

	"github.com/darkkaiser/broadcast-server/internal/service/contract"
)

// idGenerator 프로세스 전역에서 단조 증가하는 BroadcastID를 발급합니다. 첫 값은 1입니다.
type idGenerator struct {
	last atomic.Int64
}

// NewIDGenerator 새 ID 발급기를 생성합니다.
func NewIDGenerator() contract.IDGenerator {
	return &idGenerator{}
}

func (g *idGenerator) Next() contract.BroadcastID {
	return contract.BroadcastID(g.last.Add(1))
}
