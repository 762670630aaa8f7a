// Package wireformat defines the stable, language-neutral description of the
// context table layout and the fingerprint extensions pin it with. These
// encodings are part of the ABI contract and must stay backward compatible.
package wireformat

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stdErrors "errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/errors"
)

// ABIName identifies the table family in every descriptor.
const ABIName = "reglet-abi/ctx"

// LayoutWire is the descriptor of one context version.
type LayoutWire struct {
	ABI     string         `json:"abi" cbor:"1,keyasint"`
	Fields  []abi.SlotInfo `json:"fields" cbor:"3,keyasint"`
	Version int            `json:"version" cbor:"2,keyasint"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wireformat: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Layout returns the descriptor of the given context version.
func Layout(version int) (*LayoutWire, error) {
	fields, err := abi.Layout(version)
	if err != nil {
		return nil, err
	}
	return &LayoutWire{ABI: ABIName, Version: version, Fields: fields}, nil
}

// MarshalCBOR encodes l canonically. Equal layouts encode to equal bytes.
func MarshalCBOR(l *LayoutWire) ([]byte, error) {
	data, err := encMode.Marshal(l)
	if err != nil {
		return nil, &errors.WireFormatError{Operation: "encode", Type: "LayoutWire", Err: err}
	}
	return data, nil
}

// UnmarshalCBOR decodes a descriptor.
func UnmarshalCBOR(data []byte) (*LayoutWire, error) {
	var l LayoutWire
	if err := cbor.Unmarshal(data, &l); err != nil {
		return nil, &errors.WireFormatError{Operation: "decode", Type: "LayoutWire", Err: err}
	}
	return &l, nil
}

// MarshalJSON encodes l as indented JSON for humans and tooling.
func MarshalJSON(l *LayoutWire) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, &errors.WireFormatError{Operation: "encode", Type: "LayoutWire", Err: err}
	}
	return data, nil
}

// Sum returns the hex SHA-256 of l's canonical CBOR encoding.
func Sum(l *LayoutWire) (string, error) {
	data, err := MarshalCBOR(l)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Fingerprint returns the fingerprint of the given context version.
func Fingerprint(version int) (string, error) {
	l, err := Layout(version)
	if err != nil {
		return "", err
	}
	return Sum(l)
}

// ErrFingerprintMismatch is wrapped by Verify when a pinned fingerprint does
// not describe this host's layout.
var ErrFingerprintMismatch = stdErrors.New("layout fingerprint mismatch")

// Verify checks a pinned fingerprint against the layout of version.
// Comparison is case-insensitive.
func Verify(version int, fingerprint string) error {
	want, err := Fingerprint(version)
	if err != nil {
		return err
	}
	got, err := hex.DecodeString(fingerprint)
	if err != nil {
		return &errors.WireFormatError{Operation: "verify", Type: "fingerprint", Err: err}
	}
	wantRaw, _ := hex.DecodeString(want)
	if !bytes.Equal(got, wantRaw) {
		return &errors.WireFormatError{
			Operation: "verify",
			Type:      "LayoutWire",
			Err:       fmt.Errorf("%w: pinned %s, version %d is %s", ErrFingerprintMismatch, fingerprint, version, want),
		}
	}
	return nil
}
