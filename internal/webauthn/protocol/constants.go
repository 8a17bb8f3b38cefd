package protocol

const (
	// Authenticator Attachment
	Platform      AuthenticatorAttachment = "platform"
	CrossPlatform AuthenticatorAttachment = "cross-platform"

	// User Verification Requirement
	VerificationRequired    UserVerificationRequirement = "required"
	VerificationPreferred   UserVerificationRequirement = "preferred"
	VerificationDiscouraged UserVerificationRequirement = "discouraged"

	// Resident Key Requirement
	ResidentKeyRequired    ResidentKeyRequirement = "required"
	ResidentKeyPreferred   ResidentKeyRequirement = "preferred"
	ResidentKeyDiscouraged ResidentKeyRequirement = "discouraged"

	// Aliases to match go-webauthn library naming
	ResidentKeyRequirementRequired = ResidentKeyRequired

	// Conveyance Preference
	PreferNoAttestation ConveyancePreference = "none"
	PreferIndirect      ConveyancePreference = "indirect"
	PreferDirect        ConveyancePreference = "direct"
	PreferEnterprise    ConveyancePreference = "enterprise"

	// Credential Type
	PublicKeyCredentialType CredentialType = "public-key"
)

// COSEAlgorithmIdentifier enumerates the signature algorithms the relying party will accept.
type COSEAlgorithmIdentifier int64

// Registered COSE algorithm identifiers (IANA COSE Algorithms registry) accepted by the
// signature verifier. RS1 is recognized but rejected by default policy.
const (
	AlgES256 COSEAlgorithmIdentifier = -7
	AlgES384 COSEAlgorithmIdentifier = -35
	AlgES512 COSEAlgorithmIdentifier = -36
	AlgEdDSA COSEAlgorithmIdentifier = -8
	AlgPS256 COSEAlgorithmIdentifier = -37
	AlgPS384 COSEAlgorithmIdentifier = -38
	AlgPS512 COSEAlgorithmIdentifier = -39
	AlgRS256 COSEAlgorithmIdentifier = -257
	AlgRS384 COSEAlgorithmIdentifier = -258
	AlgRS512 COSEAlgorithmIdentifier = -259
	AlgRS1   COSEAlgorithmIdentifier = -65535
)

// AttestationConveyancePreference aliases matching the spec's ConveyancePreference wording.
const (
	AttestationNone       = PreferNoAttestation
	AttestationIndirect   = PreferIndirect
	AttestationDirect     = PreferDirect
	AttestationEnterprise = PreferEnterprise
)

// AttestationFormat identifies the attestation statement format used in an attestation object.
type AttestationFormat string

// Supported attestation statement formats (trust-chain/MDS validation is out of scope; each
// format's self-consistency is verified, not the authenticator's provenance).
const (
	AttestationFormatNone             AttestationFormat = "none"
	AttestationFormatPacked           AttestationFormat = "packed"
	AttestationFormatFIDOU2F          AttestationFormat = "fido-u2f"
	AttestationFormatTPM              AttestationFormat = "tpm"
	AttestationFormatAndroidKey       AttestationFormat = "android-key"
	AttestationFormatAndroidSafetyNet AttestationFormat = "android-safetynet"
	AttestationFormatApple            AttestationFormat = "apple"
)
