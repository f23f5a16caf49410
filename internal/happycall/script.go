package happycall

import _ "embed"

// DefaultScriptHTML is the script seeded into an empty database.
//
//go:embed default_script.html
var DefaultScriptHTML string

// ScriptVariable is a placeholder agents fill in while reading the script.
type ScriptVariable struct {
	Name        string
	Description string
}

// Placeholder returns the bracketed form used inside script content.
func (v ScriptVariable) Placeholder() string {
	return "[" + v.Name + "]"
}

// ScriptVariables are the placeholders shown as guidance on the script editor.
var ScriptVariables = []ScriptVariable{
	{"단말기명", "개통한 단말기 모델명"},
	{"할부원금", "단말기 할부원금"},
	{"할부기간", "할부 개월 수"},
	{"약정기간", "요금 약정 기간"},
	{"요금제명", "가입 요금제 이름"},
	{"요금제기본료", "요금제 월 기본료"},
	{"부가서비스1", "첫 번째 부가서비스"},
	{"부가서비스2", "두 번째 부가서비스"},
	{"요금제유지일수", "요금제 변경 가능 시점까지의 유지 기간"},
	{"부가서비스유지일수", "부가서비스 삭제 가능 시점까지의 유지 기간"},
	{"청구기간", "예상 요금이 청구되는 기간"},
	{"청구예상금액", "해당 기간의 월 청구 예상 금액"},
	{"변경후청구금액", "요금제 변경 후 월 청구 예상 금액"},
	{"기존할부잔여기간", "기존 단말기 잔여 할부 기간"},
	{"기존할부금", "기존 단말기 잔여 할부금"},
	{"위약금", "해지 시 발생한 위약금"},
	{"처리방법", "잔여할부 및 위약금 처리 방법"},
}
