package constants

import "time"

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
}{
	MaxReconnectAttempts: 0, // 0 = 무제한, 세션 동안 계속 재접속
	ReconnectDelay:       5 * time.Second,
	HandshakeTimeout:     10 * time.Second,
}

var PrefsConfig = struct {
	LanguageKey  string
	RedisPrefix  string
	ReadyTimeout time.Duration
}{
	LanguageKey:  "language",
	RedisPrefix:  "panel:prefs:",
	ReadyTimeout: 5 * time.Second,
}

var UIConfig = struct {
	AlertLifetime       time.Duration
	MaxAlerts           int
	PreviewMinIDLength  int
	DefaultAvatar       string
	DefaultPreviewImage string
	LogTailLines        int
}{
	AlertLifetime:       5 * time.Second,
	MaxAlerts:           8,
	PreviewMinIDLength:  10, // 10자 초과일 때만 미리보기 조회
	DefaultAvatar:       "/static/img/default-avatar.svg",
	DefaultPreviewImage: "/static/img/default-avatar.png",
	LogTailLines:        100,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 3,
	ResetTimeout:     30 * time.Second,
}

var LoadConfig = struct {
	InitialLoadTimeout time.Duration
	CommandTimeout     time.Duration
}{
	InitialLoadTimeout: 15 * time.Second,
	CommandTimeout:     10 * time.Second,
}

var StringLimits = struct {
	LogLine      int
	ChannelName  int
	PreviewName  int
	ParseErrData int
}{
	LogLine:      2000,
	ChannelName:  120,
	PreviewName:  120,
	ParseErrData: 200,
}
