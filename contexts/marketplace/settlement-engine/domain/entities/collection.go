package entities

import (
	"encoding/hex"
	"strings"

	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
)

type RegisteredCollection struct {
	Collection      AccountID
	RoyaltyReceiver AccountID
	Royalty         BasisPoints
	MetadataURI     string
}

type ContractType string

const (
	ContractTypePSP34 ContractType = "psp34"
	ContractTypeRMRK  ContractType = "rmrk"
)

// NormalizeContractType maps an empty value to psp34.
func NormalizeContractType(raw string) (ContractType, error) {
	switch ContractType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ContractTypePSP34:
		return ContractTypePSP34, nil
	case ContractTypeRMRK:
		return ContractTypeRMRK, nil
	default:
		return "", domainerrors.ErrInvalidContractType
	}
}

// TemplateHandle is the code hash a new collection is instantiated from.
type TemplateHandle [32]byte

func ParseTemplateHandle(raw string) (TemplateHandle, error) {
	value := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(value)
	if err != nil || len(decoded) != len(TemplateHandle{}) {
		return TemplateHandle{}, domainerrors.ErrInvalidTemplateHandle
	}
	var handle TemplateHandle
	copy(handle[:], decoded)
	return handle, nil
}

func (h TemplateHandle) String() string {
	return "0x" + hex.EncodeToString(h[:])
}
