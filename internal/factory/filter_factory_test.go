package factory

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/adapters/filter"
	"github.com/mikey/lateral-phish-detector/internal/config"
	"github.com/mikey/lateral-phish-detector/internal/core"
	"github.com/mikey/lateral-phish-detector/internal/utils"
)

func newFilterFactory(v map[string]interface{}) *FilterFactory {
	viper := config.NewEmptyViper()
	for key, value := range v {
		viper.Set(key, value)
	}
	service := core.NewLateralPhishService(core.NewSnapshotHandle(), zap.NewNop(), utils.NewTextProcessor(nil), core.DefaultThreshold, false)
	return NewFilterFactory(config.NewFromViper(viper), zap.NewNop(), service, utils.NewTextProcessor(nil))
}

func TestFilterFactory_CreateEmailFilters(t *testing.T) {
	f := newFilterFactory(map[string]interface{}{
		"server.filters": []string{"http", "smtp"},
	})

	filters, err := f.CreateEmailFilters()
	require.NoError(t, err)
	require.Len(t, filters, 2)
	assert.IsType(t, &filter.HTTPFilter{}, filters[0])
	assert.IsType(t, &filter.SMTPFilter{}, filters[1])
}

func TestFilterFactory_Errors(t *testing.T) {
	_, err := newFilterFactory(map[string]interface{}{
		"server.filters": []string{"milter"},
	}).CreateEmailFilters()
	assert.ErrorContains(t, err, "unsupported filter type: milter")

	_, err = newFilterFactory(map[string]interface{}{
		"server.filters": []string{},
	}).CreateEmailFilters()
	assert.ErrorContains(t, err, "no filters configured")
}

func TestFilterFactory_CreateCLIFilter(t *testing.T) {
	var out bytes.Buffer
	assert.NotNil(t, newFilterFactory(nil).CreateCLIFilter(&out, false))
}
