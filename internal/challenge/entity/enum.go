package entity

type ChallengePurpose int16

const (
	ChallengePurposeUnknown       ChallengePurpose = 0
	ChallengePurposeLogin         ChallengePurpose = 1
	ChallengePurposePasswordReset ChallengePurpose = 2
)

func ChallengePurposeFromString(str string) ChallengePurpose {
	switch str {
	case "LOGIN":
		return ChallengePurposeLogin
	case "PASSWORD_RESET":
		return ChallengePurposePasswordReset
	default:
		return ChallengePurposeUnknown
	}
}

func (cp ChallengePurpose) String() string {
	switch cp {
	case ChallengePurposeLogin:
		return "LOGIN"
	case ChallengePurposePasswordReset:
		return "PASSWORD_RESET"
	default:
		return "Unknown"
	}
}

func (cp ChallengePurpose) IsUnknown() bool {
	switch cp {
	case ChallengePurposeLogin, ChallengePurposePasswordReset:
		return false
	default:
		return true
	}
}
