package tools

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

const (
	passwordDefaultLength = 12
	passwordMaxLength     = 128
	passwordLetters       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordDigits        = "0123456789"
	passwordSymbols       = "!@#$%&*-_=+?"
)

type GeneratePasswordInput struct {
	Length  int  `json:"length,omitempty" jsonschema_description:"Password length, 4 to 128. Defaults to 12."`
	Symbols bool `json:"symbols,omitempty" jsonschema_description:"Include punctuation symbols."`
}

func generatePasswordTool() ToolDefinition {
	return ToolDefinition{
		Name:        "generate_password",
		Description: "Generate a random password from letters and digits, optionally with symbols.",
		InputSchema: GenerateSchema[GeneratePasswordInput](),
		Run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in GeneratePasswordInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			pw, err := generatePassword(in.Length, in.Symbols)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Generated password: %s", pw), nil
		},
	}
}

func generatePassword(length int, symbols bool) (string, error) {
	if length == 0 {
		length = passwordDefaultLength
	}
	if length < 4 || length > passwordMaxLength {
		return "", errors.New("length must be between 4 and 128")
	}
	charset := passwordLetters + passwordDigits
	if symbols {
		charset += passwordSymbols
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random source: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
