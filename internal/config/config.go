package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	AI       AIConfig       `mapstructure:"ai"`
	TTS      TTSConfig      `mapstructure:"tts"`
	Backends BackendsConfig `mapstructure:"backends"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// AIConfig 脚本生成 LLM 配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"` // openai / azure / ark / ark-sdk
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig LLM 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// TTSConfig 配音合成服务配置
type TTSConfig struct {
	BaseURL string        `mapstructure:"base_url"` // 服务地址
	APIKey  string        `mapstructure:"api_key"`  // 凭证，为空时走兜底估算
	Timeout time.Duration `mapstructure:"timeout"`  // 单次合成超时
}

// BackendsConfig 视频生成后端配置
type BackendsConfig struct {
	Pollo      PolloConfig      `mapstructure:"pollo"`
	ImagineArt ImagineArtConfig `mapstructure:"imagineart"`
	Ark        ArkConfig        `mapstructure:"ark"`

	// Preference auto 模式下的固定尝试顺序
	Preference []string `mapstructure:"preference"`

	// 远端任务轮询策略：固定间隔、固定最大次数，超限判定超时
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PollMaxAttempts int           `mapstructure:"poll_max_attempts"`
}

// PolloConfig Pollo (Veo3) 后端配置
type PolloConfig struct {
	APIKey  string `mapstructure:"api_key"` // 为空时替换为 mock 实现
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// ImagineArtConfig ImagineArt 后端配置
type ImagineArtConfig struct {
	APIKey  string `mapstructure:"api_key"` // 为空时替换为 mock 实现
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// ArkConfig 火山方舟视频生成后端配置
type ArkConfig struct {
	APIKey  string `mapstructure:"api_key"` // 为空时替换为 mock 实现
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// PipelineConfig 生成流水线配置
type PipelineConfig struct {
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs"` // 同时运行的任务上限
	JobTimeout        time.Duration `mapstructure:"job_timeout"`         // 单任务整体超时
	WorkDir           string        `mapstructure:"work_dir"`            // 临时工作目录根
	BackgroundTrack   string        `mapstructure:"background_track"`    // 背景音乐文件（可选）
	KeepWorkDir       bool          `mapstructure:"keep_work_dir"`       // 调试用：终态后保留临时目录
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"` // 文件落盘根目录
	BaseURL  string `mapstructure:"base_url"`  // 生成访问URL的前缀
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
	PresignExpiry   int    `mapstructure:"presign_expiry"`    // 预签名URL过期时间（秒）
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Pipeline.MaxConcurrentJobs < 1 {
		return errors.New("pipeline.max_concurrent_jobs must be at least 1")
	}
	if c.Backends.PollMaxAttempts < 1 {
		return errors.New("backends.poll_max_attempts must be at least 1")
	}
	if c.Backends.PollInterval <= 0 {
		return errors.New("backends.poll_interval must be positive")
	}

	for _, name := range c.Backends.Preference {
		switch name {
		case "pollo", "imagineart", "ark":
		default:
			return errors.New("backends.preference contains unknown backend: " + name)
		}
	}

	return nil
}
