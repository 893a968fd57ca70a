package memory

import (
	"testing"

	"github.com/bobmcallan/moverwatch/internal/interfaces"
	"github.com/bobmcallan/moverwatch/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.RunKeyValueStoreTests(t, func(t *testing.T) interfaces.KeyValueStore {
		return NewStore()
	})
}
