package happycall

// User-facing messages.
const (
	MsgLoginRequired          = "로그인이 필요합니다."
	MsgAdminOnly              = "관리자만 접근 가능합니다."
	MsgForbidden              = "접근 권한이 없습니다."
	MsgInvalidCredentials     = "아이디 또는 비밀번호가 올바르지 않습니다."
	MsgCredentialsRequired    = "아이디와 비밀번호를 모두 입력해주세요."
	MsgUsernameTaken          = "이미 존재하는 아이디입니다."
	MsgOnlyFreelancerDeletion = "프리랜서 계정만 삭제할 수 있습니다."
	MsgCustomerFieldsRequired = "고객명과 연락처를 모두 입력해주세요."
	MsgFieldTooLong           = "입력값이 너무 깁니다."
	MsgSelectCustomers        = "고객을 선택해주세요."
	MsgInvalidAgent           = "프리랜서 계정에만 배정할 수 있습니다."
	MsgInvalidStatus          = "유효하지 않은 상태입니다."
	MsgAlreadySubmitted       = "이미 제출된 건입니다."
	MsgRecordingRequired      = "녹취 파일을 업로드해주세요."
	MsgMemoTooLong            = "메모와 의견은 500자 이내로 입력해주세요."
	MsgCustomerNotFound       = "고객을 찾을 수 없습니다."
	MsgSubmissionNotFound     = "제출 내역을 찾을 수 없습니다."
	MsgUserNotFound           = "사용자를 찾을 수 없습니다."
	MsgRecordingNotFound      = "녹취 파일을 찾을 수 없습니다."
)
