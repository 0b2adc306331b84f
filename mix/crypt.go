package mix

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blowfish"
)

const (
	keySourceSize = 80
	keyBlockSize  = 40
	keyPlainSize  = 39
	blowfishKey   = 56
)

// Westwood public key used to protect the blowfish key of encrypted headers.
var (
	rsaModulus  = mustHexBig("51bcda086d39fce4565160d651713fa2e8aa54fa6682b04aabdd0e6af8b0c1e6d1fb4f3daa437f15")
	rsaExponent = big.NewInt(0x10001)
)

func mustHexBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("mix: invalid key constant")
	}
	return v
}

// deriveKey turns the 80 byte key source into the blowfish key.
func deriveKey(source []byte) ([]byte, error) {
	if len(source) != keySourceSize {
		return nil, fmt.Errorf("key source has %d bytes", len(source))
	}

	key := make([]byte, 0, 2*keyPlainSize)
	for i := 0; i < keySourceSize; i += keyBlockSize {
		block := make([]byte, keyBlockSize)
		for j := range keyBlockSize {
			block[keyBlockSize-1-j] = source[i+j]
		}

		plain := new(big.Int).Exp(new(big.Int).SetBytes(block), rsaExponent, rsaModulus).Bytes()

		le := make([]byte, keyPlainSize)
		for j := 0; j < len(plain) && j < keyPlainSize; j++ {
			le[j] = plain[len(plain)-1-j]
		}
		key = append(key, le...)
	}

	return key[:blowfishKey], nil
}

type headerCipher struct {
	cipher *blowfish.Cipher
}

func newHeaderCipher(source []byte) (*headerCipher, error) {
	key, err := deriveKey(source)
	if err != nil {
		return nil, err
	}

	c, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return &headerCipher{cipher: c}, nil
}

// decrypt decodes buf in place, one 8 byte block at a time.
func (h *headerCipher) decrypt(buf []byte) {
	bs := h.cipher.BlockSize()
	for i := 0; i+bs <= len(buf); i += bs {
		h.cipher.Decrypt(buf[i:i+bs], buf[i:i+bs])
	}
}

func encryptedIndexBlocks(count uint16) int {
	return (6 + int(count)*entrySize + 7) / 8
}

func readCount(block []byte) (uint16, uint32) {
	return binary.LittleEndian.Uint16(block[0:2]), binary.LittleEndian.Uint32(block[2:6])
}
