package app

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/jcape/datatest/internal/gosrc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(Config{})

	require.NoError(t, err)
	assert.Equal(t, []string{"."}, cfg.Dirs)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, "datatest.hcl", cfg.HCLFile)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
}

func TestNewConfig_Errors(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "output path", cfg: Config{Output: "gen/x_test.go"}, want: "must be a file name"},
		{name: "output not a test file", cfg: Config{Output: "gen.go"}, want: "must end in _test.go"},
		{name: "hcl path", cfg: Config{HCLFile: "../datatest.hcl"}, want: "must be a file name"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_OutputFor(t *testing.T) {
	cfg, err := NewConfig(Config{Output: "zz_datatest_test.go"})
	require.NoError(t, err)

	internal := &gosrc.Package{Name: "conv"}
	external := &gosrc.Package{Name: "conv_test", Siblings: []*gosrc.Package{internal}}
	alone := &gosrc.Package{Name: "conv_test"}

	assert.Equal(t, "zz_datatest_test.go", cfg.OutputFor(internal))
	assert.Equal(t, "zz_datatest_x_test.go", cfg.OutputFor(external))
	assert.Equal(t, "zz_datatest_test.go", cfg.OutputFor(alone))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "file", "x_test.go")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "datatestgen", entry["component"])
	assert.Equal(t, "x_test.go", entry["file"])
}

func TestNewLogger_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("chatty", "text", &buf)

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}
