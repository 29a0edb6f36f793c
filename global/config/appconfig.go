package config

import "time"

type AppConfig struct {
	HTTPAddr    string `mapstructure:"http_addr"`    // http + websocket 监听地址
	DatabaseURL string `mapstructure:"database_url"` // postgres 连接串
	LogLevel    string `mapstructure:"log_level"`

	JwtSecret    string        `mapstructure:"jwt_secret"`
	JwtTTL       time.Duration `mapstructure:"jwt_ttl"`
	AuthUser     string        `mapstructure:"auth_user"` // /auth/login 账号
	AuthPassword string        `mapstructure:"auth_password"`

	Redis   RedisConfig   `mapstructure:"redis"`
	Gateway GatewayConfig `mapstructure:"gateway"`
}

// RedisConfig Addr 为空时不启用图片缓存
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type GatewayConfig struct {
	NodeID         int64         `mapstructure:"node_id"`          // 连接 ID 的雪花节点号
	SendQueue      int           `mapstructure:"send_queue"`       // 每连接发送队列长度
	WriteWait      time.Duration `mapstructure:"write_wait"`       // 单次写超时
	PongWait       time.Duration `mapstructure:"pong_wait"`        // 读超时，收到 pong 续期
	PingInterval   time.Duration `mapstructure:"ping_interval"`    // 必须小于 PongWait
	MaxMessageSize int64         `mapstructure:"max_message_size"` // 客户端入站帧上限
}
