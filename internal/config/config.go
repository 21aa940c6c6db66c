package config

import (
	"os"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// defaults mirrors the shipped opsctl.env. Every key can be overridden by the
// env file and, with highest priority, by a process environment variable of
// the same name.
const defaults = `
LOG_DIR=/var/log/onekey-ops
STATE_DIR=/var/lib/onekey-ops

ORIGIN_TARGETS_FILE=/etc/onekey-ops/origin_targets.conf
ORIGIN_LOG_FILE=/var/log/onekey-ops/origin_monitor.log
ORIGIN_TIMEOUT=5
ORIGIN_ALERT_INTERVAL=3600
ORIGIN_ALERT_METHOD=none
ORIGIN_SSH_KEY=/root/.ssh/id_rsa
ORIGIN_ALERT_HOST=
ORIGIN_ALERT_CMD=/opt/telegram_send.sh
ORIGIN_SSH_OPTS=-o BatchMode=yes -o ConnectTimeout=5
ORIGIN_EXPECT_HTTP_CODE=200
ORIGIN_DEFAULT_PORT=443
ORIGIN_DEFAULT_PATH=/
ORIGIN_DEFAULT_SLOW_TIME=5
ORIGIN_DEFAULT_SCHEME=https
ORIGIN_CONCURRENCY=4

CN_DOMAINS_FILE=/etc/onekey-ops/domains.txt
CN_LOG_FILE=/var/log/onekey-ops/cn_check.log
CN_RESULT_FILE=/var/lib/onekey-ops/result_cn.json
CN_TIMEOUT=8
CN_MAX_PROXY_RETRY=2
CN_PROXY_API=
CN_CONCURRENCY=4

CN_PUSH_ENABLE=0
CN_PUSH_USER=root
CN_PUSH_HOST=
CN_PUSH_DIR=/opt/qiangcsgfw_foreign
CN_PUSH_SSH_KEY=
CN_PUSH_SCP_OPTS=-o BatchMode=yes -o ConnectTimeout=5

TELEGRAM_BOT_TOKEN=
TELEGRAM_CHAT_ID=

API_ADDR=127.0.0.1:8686
API_KEYS=
API_RPM=120
API_BURST=60
`

type Config struct {
	LogDir   string `ini:"LOG_DIR"`
	StateDir string `ini:"STATE_DIR"`

	OriginTargetsFile   string  `ini:"ORIGIN_TARGETS_FILE"`
	OriginLogFile       string  `ini:"ORIGIN_LOG_FILE"`
	OriginTimeout       int     `ini:"ORIGIN_TIMEOUT"`
	OriginAlertInterval int     `ini:"ORIGIN_ALERT_INTERVAL"`
	OriginAlertMethod   string  `ini:"ORIGIN_ALERT_METHOD"`
	OriginSSHKey        string  `ini:"ORIGIN_SSH_KEY"`
	OriginAlertHost     string  `ini:"ORIGIN_ALERT_HOST"`
	OriginAlertCmd      string  `ini:"ORIGIN_ALERT_CMD"`
	OriginSSHOpts       string  `ini:"ORIGIN_SSH_OPTS"`
	OriginExpectCode    string  `ini:"ORIGIN_EXPECT_HTTP_CODE"`
	OriginDefaultPort   int     `ini:"ORIGIN_DEFAULT_PORT"`
	OriginDefaultPath   string  `ini:"ORIGIN_DEFAULT_PATH"`
	OriginDefaultSlow   float64 `ini:"ORIGIN_DEFAULT_SLOW_TIME"`
	OriginDefaultScheme string  `ini:"ORIGIN_DEFAULT_SCHEME"`
	OriginConcurrency   int     `ini:"ORIGIN_CONCURRENCY"`

	CNDomainsFile   string `ini:"CN_DOMAINS_FILE"`
	CNLogFile       string `ini:"CN_LOG_FILE"`
	CNResultFile    string `ini:"CN_RESULT_FILE"`
	CNTimeout       int    `ini:"CN_TIMEOUT"`
	CNMaxProxyRetry int    `ini:"CN_MAX_PROXY_RETRY"`
	CNProxyAPI      string `ini:"CN_PROXY_API"`
	CNConcurrency   int    `ini:"CN_CONCURRENCY"`

	CNPushEnable  bool   `ini:"CN_PUSH_ENABLE"`
	CNPushUser    string `ini:"CN_PUSH_USER"`
	CNPushHost    string `ini:"CN_PUSH_HOST"`
	CNPushDir     string `ini:"CN_PUSH_DIR"`
	CNPushSSHKey  string `ini:"CN_PUSH_SSH_KEY"`
	CNPushSCPOpts string `ini:"CN_PUSH_SCP_OPTS"`

	TelegramBotToken string `ini:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `ini:"TELEGRAM_CHAT_ID"`

	APIAddr  string `ini:"API_ADDR"`
	APIKeys  string `ini:"API_KEYS"`
	APIRPM   int    `ini:"API_RPM"`
	APIBurst int    `ini:"API_BURST"`

	// raw keeps the resolved KEY=VALUE view for `config show`.
	raw map[string]string
}

// Load reads path (a missing file is fine, defaults apply), then overrides
// every key present and non-empty in the process environment.
func Load(path string) (Config, error) {
	f, err := ini.LooseLoad([]byte(defaults), path)
	if err != nil {
		return Config{}, err
	}
	sec := f.Section("")

	for _, k := range sec.KeyStrings() {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			sec.Key(k).SetValue(v)
		}
	}

	var cfg Config
	if err := sec.MapTo(&cfg); err != nil {
		return Config{}, err
	}

	cfg.raw = make(map[string]string, len(sec.Keys()))
	for _, k := range sec.Keys() {
		cfg.raw[k.Name()] = k.Value()
	}
	return cfg, nil
}

// Keys returns the resolved key names, sorted.
func (c Config) Keys() []string {
	out := make([]string, 0, len(c.raw))
	for k := range c.raw {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Value returns the resolved raw value for a key.
func (c Config) Value(key string) string { return c.raw[key] }

var sensitiveKeywords = []string{"TOKEN", "PASSWORD", "PASS", "SECRET", "SIGN", "TRADE", "PROXY_API", "API_KEYS"}

// IsSensitive reports whether a key's value must be masked when printed.
func IsSensitive(key string) bool {
	up := strings.ToUpper(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(up, kw) {
			return true
		}
	}
	return false
}

// Mask hides the middle of a secret, keeping just enough to recognize it.
func Mask(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "****" + v[len(v)-4:]
}
