package engine_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/warekit/shuttle/internal/assert/helpers"
	"github.com/warekit/shuttle/internal/engine"
	"github.com/warekit/shuttle/pkg/api"
)

func TestCacheLookups(t *testing.T) {
	as := assert.New(t)

	cache := engine.NewCache()
	procID := helpers.AddProcess(cache, "receiving")
	fieldID := helpers.AddField(cache, "LicensePlate", api.FieldString)

	t.Run("process_lookup", func(t *testing.T) {
		as.NotNil(cache.Process(procID))
		as.NotNil(cache.Module(procID))
		as.Nil(cache.Process(uuid.New()))
	})

	t.Run("field_by_name_case_insensitive", func(t *testing.T) {
		as.NotNil(cache.FieldByName("licenseplate"))
		as.NotNil(cache.FieldByName("LICENSEPLATE"))
		as.Nil(cache.FieldByName("unknown"))
		as.Equal(fieldID, cache.FieldByName("LicensePlate").ID)
	})

	t.Run("field_without_module_not_name_indexed", func(t *testing.T) {
		orphan := uuid.New()
		cache.AddField(&api.FieldModule{ID: orphan, Type: api.FieldString})
		as.NotNil(cache.Field(orphan))
		as.Nil(cache.FieldByName(""))
	})

	t.Run("counts", func(t *testing.T) {
		counts := cache.Counts()
		as.Equal(1, counts.Processes)
		as.Equal(2, counts.Fields)
		as.Equal(2, counts.Modules)
	})
}
