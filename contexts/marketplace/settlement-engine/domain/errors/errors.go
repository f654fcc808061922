package errors

import "errors"

var (
	// Authorization.
	ErrCallerIsNotOwner = errors.New("caller is not the marketplace owner")
	ErrNotOwner         = errors.New("caller is not the token owner")

	// State conflict.
	ErrItemAlreadyListedForSale  = errors.New("item is already listed for sale")
	ErrItemNotListedForSale      = errors.New("item is not listed for sale")
	ErrContractAlreadyRegistered = errors.New("collection is already registered")
	ErrNotRegisteredContract     = errors.New("collection is not registered")
	ErrAlreadyOwner              = errors.New("buyer already owns the token")

	// Value.
	ErrBadBuyValue        = errors.New("payment is below the listing price")
	ErrFeeTooHigh         = errors.New("fee exceeds the maximum fee")
	ErrInvalidPrice       = errors.New("listing price must be positive")
	ErrInvalidAmount      = errors.New("amount is outside the balance range")
	ErrArithmeticOverflow = errors.New("fee split exceeds the payment")

	// Resolution failure.
	ErrTokenDoesNotExist     = errors.New("token does not exist")
	ErrNftContractHashNotSet = errors.New("collection template is not configured")

	// External-call failure.
	ErrUnableToTransferToken       = errors.New("unable to transfer token to the buyer")
	ErrTransferToOwnerFailed       = errors.New("payment to the seller failed")
	ErrTransferToMarketplaceFailed = errors.New("payment to the marketplace failed")
	ErrTransferToAuthorFailed      = errors.New("payment to the royalty receiver failed")
	ErrPSP34InstantiationFailed    = errors.New("collection instantiation failed")

	// Reentrancy.
	ErrReentrantCall = errors.New("reentrant call into the marketplace")

	ErrInvalidRequest           = errors.New("invalid marketplace request")
	ErrInvalidContractType      = errors.New("unknown collection contract type")
	ErrInvalidTemplateHandle    = errors.New("collection template handle must be 32 bytes")
	ErrInvalidConfig            = errors.New("invalid marketplace configuration")
	ErrConfigNotInitialized     = errors.New("marketplace configuration is not initialized")
	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)
