package output

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Output(t *testing.T) {
	data := map[string]int{"value": 42}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		f := New(FormatJSON)
		f.SetWriter(&buf)

		require.NoError(t, f.Output(data, func(io.Writer) error {
			t.Fatal("text renderer must not run for json")
			return nil
		}))
		var decoded map[string]int
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, data, decoded)
		assert.True(t, f.IsJSON())
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		f := New(FormatText)
		f.SetWriter(&buf)

		require.NoError(t, f.Output(data, func(w io.Writer) error {
			_, err := io.WriteString(w, "custom\n")
			return err
		}))
		assert.Equal(t, "custom\n", buf.String())
	})

	t.Run("text fallback", func(t *testing.T) {
		var buf bytes.Buffer
		f := New(FormatText)
		f.SetWriter(&buf)

		require.NoError(t, f.Output("plain", nil))
		assert.Equal(t, "plain\n", buf.String())
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, New(Format("xml")).Output(data, nil))
	})
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, []string{"id", "name"}, [][]string{
		{"1", "Home Flex"},
		{"22", "Pulsar"},
	}))
	assert.Equal(t, "ID  NAME\n1   Home Flex\n22  Pulsar\n", buf.String())
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "1,299.5 USD", Money(1299.5, "USD"))
	assert.Equal(t, "12,000", Money(12000, ""))
	assert.Equal(t, "-", Ago(time.Time{}))
	assert.Equal(t, "1 hour ago", Ago(time.Now().Add(-time.Hour)))

	s := "Spain"
	empty := ""
	assert.Equal(t, "Spain", OrDash(&s))
	assert.Equal(t, "-", OrDash(&empty))
	assert.Equal(t, "-", OrDash(nil))
}

func TestGetFormatFromCmd(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    Format
		wantErr bool
	}{
		{"default", nil, FormatText, false},
		{"json", []string{"-o", "json"}, FormatJSON, false},
		{"invalid", []string{"--output", "yaml"}, FormatText, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			AddFormatFlag(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			got, err := GetFormatFromCmd(cmd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
