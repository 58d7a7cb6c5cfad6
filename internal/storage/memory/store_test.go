package memory

import (
	"testing"

	"github.com/zhouzirui/mind-chat/backend/internal/storage"
	"github.com/zhouzirui/mind-chat/backend/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(*testing.T) storage.Store { return NewStore() })
}
