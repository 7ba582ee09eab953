package cnst

const (
	AppName          = "coursechat"
	CommandName      = "coursechat"
	BackendName      = "coursechat-mock-backend"
	BackendCommand   = "mock-backend"
	WidgetYaml       = "coursechat.yaml"
	BackendYaml      = "mock-backend.yaml"
	DefaultPersona   = "Adam"
	DefaultPromptKey = "global"
	AssistantSender  = "assistant"
	UserSender       = "user"
)
