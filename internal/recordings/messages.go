package recordings

// User-facing messages.
const (
	MsgExtensionNotAllowed = "허용되지 않는 파일 형식입니다."
	MsgFileTooLarge        = "파일 크기가 너무 큽니다."
	MsgInvalidWAV          = "올바른 WAV 파일이 아닙니다."
)
