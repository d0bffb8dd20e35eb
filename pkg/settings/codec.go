package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec reads and writes one file format. Decode fills only the keys present,
// so decoding into Default() keeps defaults for missing keys.
type Codec interface {
	Decode(data []byte, s *Settings) error
	Encode(s Settings) ([]byte, error)
}

// DefaultCodecs returns the codecs keyed by file extension.
func DefaultCodecs() map[string]Codec {
	return map[string]Codec{
		".json": JSONCodec{},
		".yaml": YAMLCodec{},
		".yml":  YAMLCodec{},
	}
}

// CodecFor picks the codec for path by extension, falling back to JSON.
func CodecFor(path string) Codec {
	if c, ok := DefaultCodecs()[strings.ToLower(filepath.Ext(path))]; ok {
		return c
	}
	return JSONCodec{}
}

// JSONCodec handles settings.json.
type JSONCodec struct{}

func (JSONCodec) Decode(data []byte, s *Settings) error {
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func (JSONCodec) Encode(s Settings) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// YAMLCodec handles settings.yaml and settings.yml.
type YAMLCodec struct{}

func (YAMLCodec) Decode(data []byte, s *Settings) error {
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	return nil
}

func (YAMLCodec) Encode(s Settings) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
