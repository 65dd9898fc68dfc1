package yamlutil_test

// Notes:
// - UnmarshalOrdered is only checked for key order and nested sequences;
//   scalar decoding is the library's responsibility.
// - TestInputSizeLimit mutates MaxInputSize and therefore does not run in parallel.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-docs2pdf/internal/yamlutil"
)

type testConfig struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count"`
	Enabled bool   `yaml:"enabled"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Parses YAML into Go structs
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
	}{
		{"valid YAML", []byte("name: test\ncount: 42\nenabled: true"), &testConfig{}, nil},
		{"valid JSON", []byte(`{"name": "test", "count": 42}`), &testConfig{}, nil},
		{"nil data", nil, &testConfig{}, yamlutil.ErrNilData},
		{"empty data", []byte{}, &testConfig{}, yamlutil.ErrNilData},
		{"nil destination", []byte("name: test"), nil, yamlutil.ErrNilDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			cfg := tt.dest.(*testConfig)
			if cfg.Name != "test" || cfg.Count != 42 {
				t.Errorf("decoded = %+v, want name=test count=42", cfg)
			}
		})
	}
}

func TestUnmarshal_SyntaxErrorHasPrefix(t *testing.T) {
	t.Parallel()

	err := yamlutil.Unmarshal([]byte("name: [unclosed"), &testConfig{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("error = %q, want prefix 'yamlutil:'", err)
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Rejects unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	t.Run("known fields decode", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		if err := yamlutil.UnmarshalStrict([]byte("name: strict\ncount: 10"), &cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Name != "strict" || cfg.Count != 10 {
			t.Errorf("decoded = %+v", cfg)
		}
	})

	t.Run("unknown field fails", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := yamlutil.UnmarshalStrict([]byte("name: strict\nunknown: 1"), &cfg)
		if err == nil {
			t.Fatal("expected error for unknown field, got nil")
		}
	})
}

// ---------------------------------------------------------------------------
// TestUnmarshalOrdered - Keeps mapping key order
// ---------------------------------------------------------------------------

func TestUnmarshalOrdered(t *testing.T) {
	t.Parallel()

	data := []byte(`{"docs": {"Zeta": ["z1"], "Alpha": ["a1", "a2"], "Mid": []}}`)

	var got any
	if err := yamlutil.UnmarshalOrdered(data, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root, ok := got.(yamlutil.MapSlice)
	if !ok {
		t.Fatalf("root type = %T, want MapSlice", got)
	}
	inner, ok := root[0].Value.(yamlutil.MapSlice)
	if !ok {
		t.Fatalf("inner type = %T, want MapSlice", root[0].Value)
	}

	var keys []string
	for _, item := range inner {
		keys = append(keys, item.Key.(string))
	}
	if strings.Join(keys, ",") != "Zeta,Alpha,Mid" {
		t.Errorf("key order = %v, want [Zeta Alpha Mid]", keys)
	}

	alpha, ok := inner[1].Value.([]any)
	if !ok || len(alpha) != 2 {
		t.Errorf("Alpha value = %#v, want two items", inner[1].Value)
	}
}

// ---------------------------------------------------------------------------
// TestReadFile - Reads and decodes files
// ---------------------------------------------------------------------------

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("name: file\ncount: 3"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("decodes with given decoder", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		if err := yamlutil.ReadFile(path, &cfg, yamlutil.UnmarshalStrict); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Name != "file" || cfg.Count != 3 {
			t.Errorf("decoded = %+v", cfg)
		}
	})

	t.Run("missing file returns os.ErrNotExist", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := yamlutil.ReadFile(filepath.Join(dir, "missing.yaml"), &cfg, yamlutil.Unmarshal)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - Verifies MaxInputSize enforcement
// ---------------------------------------------------------------------------

func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })

	t.Run("input at limit succeeds", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := make([]byte, 100)
		copy(data, []byte("name: x"))
		var cfg testConfig
		if err := yamlutil.Unmarshal(data, &cfg); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("all decoders enforce the limit", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := make([]byte, 101)
		copy(data, []byte("name: x"))

		decoders := map[string]func([]byte, any) error{
			"Unmarshal":        yamlutil.Unmarshal,
			"UnmarshalStrict":  yamlutil.UnmarshalStrict,
			"UnmarshalOrdered": yamlutil.UnmarshalOrdered,
		}
		for name, decode := range decoders {
			var cfg testConfig
			if err := decode(data, &cfg); !errors.Is(err, yamlutil.ErrInputTooLarge) {
				t.Errorf("%s: error = %v, want ErrInputTooLarge", name, err)
			}
		}
	})

	t.Run("ReadFile checks size before reading", func(t *testing.T) {
		yamlutil.MaxInputSize = 10
		path := filepath.Join(t.TempDir(), "big.yaml")
		if err := os.WriteFile(path, []byte("name: far-too-long-for-limit"), 0o600); err != nil {
			t.Fatal(err)
		}
		var cfg testConfig
		err := yamlutil.ReadFile(path, &cfg, yamlutil.Unmarshal)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("error = %v, want ErrInputTooLarge", err)
		}
	})
}
