package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	JWT         JWTConfig         `yaml:"jwt"`
	Cache       CacheConfig       `yaml:"cache"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Telegram    TelegramConfig    `yaml:"telegram"`
	Database    DatabaseConfig    `yaml:"database"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Browser     BrowserConfig     `yaml:"browser"`
	TokCount    TokCountConfig    `yaml:"tokcount"`
	BlockDetect BlockDetectConfig `yaml:"blockDetect"`
	Profiles    ProfilesConfig    `yaml:"profiles"`
}

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Port                string `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int    `yaml:"idleTimeoutSeconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	JSONFormat bool   `yaml:"jsonFormat"`
	FilePath   string `yaml:"filePath"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpiryHours int    `yaml:"expiryHours"`
}

// CacheConfig 指标缓存配置
type CacheConfig struct {
	TTLSeconds      int `yaml:"ttlSeconds"`      // 成功记录的缓存时间
	ErrorTTLSeconds int `yaml:"errorTtlSeconds"` // 失败/被封禁记录的缓存时间
}

// SchedulerConfig 自动播报调度器配置
type SchedulerConfig struct {
	Enabled                  bool `yaml:"enabled"`
	BroadcastIntervalSeconds int  `yaml:"broadcastIntervalSeconds"` // 为0时取缓存TTL
}

// TelegramConfig Telegram配置
type TelegramConfig struct {
	Token            string `yaml:"token"`
	StatsChatID      int64  `yaml:"statsChatId"`      // 自动播报的目标会话
	AuthorizedUserID int64  `yaml:"authorizedUserId"` // 为0时不限制
	EnableCommands   bool   `yaml:"enableCommands"`   // 是否启用命令前端
	Timezone         string `yaml:"timezone"`         // 报告里时间的展示时区
}

// DatabaseConfig 数据库配置（快照历史，可选）
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// KafkaConfig Kafka配置（快照事件，可选）
type KafkaConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Brokers       []string `yaml:"brokers"`
	SnapshotTopic string   `yaml:"snapshotTopic"`
}

// BrowserConfig 浏览器自动化配置
type BrowserConfig struct {
	MaxSessions    int    `yaml:"maxSessions"`    // 并发浏览器会话上限
	TimeoutSeconds int    `yaml:"timeoutSeconds"` // 单次渲染超时
	ExecPath       string `yaml:"execPath"`       // Chrome可执行文件路径，为空则自动查找
	UserAgent      string `yaml:"userAgent"`
}

// TokCountConfig TokCount第三方统计服务配置
type TokCountConfig struct {
	BaseURL   string `yaml:"baseUrl"`
	Origin    string `yaml:"origin"`
	Referer   string `yaml:"referer"`
	UserAgent string `yaml:"userAgent"`
}

// BlockDetectConfig 防爬封禁识别配置
type BlockDetectConfig struct {
	Indicators []string `yaml:"indicators"` // 追加到内置指示词之后
}

// ProfilesConfig 被监控账号配置
type ProfilesConfig struct {
	Path string `yaml:"path"` // 账号文件路径，运行期修改会写回该文件
}

// DatabaseDSN 获取数据库连接字符串
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// BroadcastInterval 计算实际播报间隔（秒）：未配置时取缓存TTL，最小1秒
func (c *Config) BroadcastInterval() int {
	interval := c.Scheduler.BroadcastIntervalSeconds
	if interval <= 0 {
		interval = c.Cache.TTLSeconds
	}
	if interval < 1 {
		interval = 1
	}
	return interval
}

// LoadConfig 从文件加载配置并应用环境变量覆盖
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyDefaults(&config)
	applyEnvOverrides(&config)

	return &config, nil
}

// applyDefaults 设置默认值
func applyDefaults(config *Config) {
	if config.Server.Port == "" {
		config.Server.Port = "8084"
	}
	if config.Server.ReadTimeoutSeconds == 0 {
		config.Server.ReadTimeoutSeconds = 10
	}
	if config.Server.WriteTimeoutSeconds == 0 {
		config.Server.WriteTimeoutSeconds = 10
	}
	if config.Server.IdleTimeoutSeconds == 0 {
		config.Server.IdleTimeoutSeconds = 60
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}

	if config.JWT.Secret == "" {
		config.JWT.Secret = "default-jwt-secret-key"
	}
	if config.JWT.ExpiryHours == 0 {
		config.JWT.ExpiryHours = 24
	}

	if config.Cache.TTLSeconds <= 0 {
		config.Cache.TTLSeconds = 600
	}
	if config.Cache.ErrorTTLSeconds <= 0 {
		// 失败结果缓存时间缺省为TTL的五分之一，下限30秒
		config.Cache.ErrorTTLSeconds = config.Cache.TTLSeconds / 5
		if config.Cache.ErrorTTLSeconds < 30 {
			config.Cache.ErrorTTLSeconds = 30
		}
	}
	if config.Cache.ErrorTTLSeconds > config.Cache.TTLSeconds {
		config.Cache.ErrorTTLSeconds = config.Cache.TTLSeconds
	}

	if config.Browser.MaxSessions <= 0 {
		config.Browser.MaxSessions = 2
	}
	if config.Browser.TimeoutSeconds <= 0 {
		config.Browser.TimeoutSeconds = 45
	}

	if config.TokCount.BaseURL == "" {
		config.TokCount.BaseURL = "https://tiktok.tokcount.com"
	}
	if config.TokCount.Origin == "" {
		config.TokCount.Origin = "https://tokcount.com"
	}
	if config.TokCount.Referer == "" {
		config.TokCount.Referer = "https://tokcount.com/"
	}
	if config.TokCount.UserAgent == "" {
		config.TokCount.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}

	if len(config.Kafka.Brokers) == 0 {
		config.Kafka.Brokers = []string{"kafka:9092"}
	}
	if config.Kafka.SnapshotTopic == "" {
		config.Kafka.SnapshotTopic = "statsbot.snapshots"
	}

	if config.Telegram.Timezone == "" {
		config.Telegram.Timezone = "America/Sao_Paulo"
	}

	if config.Profiles.Path == "" {
		config.Profiles.Path = "profiles.yaml"
	}
}

// applyEnvOverrides 从环境变量覆盖敏感配置
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}
	if chatID := os.Getenv("STATS_CHAT_ID"); chatID != "" {
		if parsed, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			config.Telegram.StatsChatID = parsed
		}
	}
	if userID := os.Getenv("AUTHORIZED_USER_ID"); userID != "" {
		if parsed, err := strconv.ParseInt(userID, 10, 64); err == nil {
			config.Telegram.AuthorizedUserID = parsed
		}
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.JWT.Secret = secret
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.Database.Password = password
	}
}

// GetConfigPath 获取配置文件路径，优先使用环境变量
func GetConfigPath() string {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}
	return "config.yaml"
}
