package httpcontroller

// Flash messages owned by the web layer. Workflow messages come from happycall.
const (
	msgLoginSuccess    = "로그인 성공!"
	msgLoggedOut       = "로그아웃 되었습니다."
	msgTooManyAttempts = "로그인 시도가 너무 많습니다. 잠시 후 다시 시도해주세요."
	msgStatusChanged   = "상태가 \"%s\"로 변경되었습니다."
	msgSubmitted       = "체크리스트가 제출되었습니다. 결과: %s"
	msgResolved        = "처리완료로 변경되었습니다."
	msgFreelancerAdded = "프리랜서 계정 \"%s\"이 생성되었습니다."
	msgFreelancerGone  = "프리랜서 계정 \"%s\"이 삭제되었습니다."
	msgAssigned        = "%s → %s 배정 완료"
	msgUnassigned      = "%s 배정 해제"
	msgBulkAssigned    = "%d건 배정 완료"
	msgBulkUnassigned  = "%d건 배정 해제 완료"
	msgCustomerAdded   = "고객 \"%s\"이 추가되었습니다."
	msgScriptSaved     = "스크립트가 저장되었습니다."
	msgInvalidUpload   = "녹취 파일을 읽을 수 없습니다."
)
