package configs

import (
	"fmt"
	"net/url"

	"github.com/spf13/viper"
)

type (
	DBType string
)

const (
	// PostgreSQL 协议.
	PostgreSQL DBType = "postgresql"
	Postgres   DBType = "postgres"
	Pg         DBType = "pg"

	// MySQL 协议.
	MySQL   DBType = "mysql"
	MariaDB DBType = "mariadb"
	// SQLite 协议.
	SQLite DBType = "sqlite"
)

const (
	DefaultMetadataType         = string(PostgreSQL)
	DefaultMetadataURL          = "localhost:5432/cloudstorage" // 默认数据库地址 host:port/dbname
	DefaultMetadataUser         = "postgres"                    // 默认数据库用户
	DefaultMetadataPass         = ""                            // 默认数据库密码
	DefaultMetadataSSLMode      = "disable"                     // 默认SSL模式
	DefaultMetadataMaxOpenConns = 0                             // 默认不限制打开连接数
	DefaultMetadataMaxIdleConns = 5                             // 默认最大空闲连接数
)

// MetadataConfig 元数据库配置. URL 形如 host:port/dbname（sqlite 则为文件路径）.
type MetadataConfig struct {
	Type         DBType `mapstructure:"type"           rule:"oneof=postgresql postgres pg mysql mariadb sqlite"`
	URL          string `mapstructure:"url"            rule:"required"`
	User         string `mapstructure:"user"`
	Pass         string `mapstructure:"pass"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns" rule:"min=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" rule:"min=0"`
}

// GetDBType 返回数据库类型的字符串表示.
func (c *MetadataConfig) GetDBType() string {
	switch c.Type {
	case PostgreSQL, Postgres, Pg:
		return "PostgreSQL"
	case MySQL, MariaDB:
		return "MySQL"
	case SQLite:
		return "SQLite"
	default:
		return "Unknown"
	}
}

// GetDSN 获取数据库的连接字符串，根据不同的数据库类型返回不同格式的DSN.
func (c *MetadataConfig) GetDSN() string {
	dsnMap := map[DBType]func() string{
		PostgreSQL: c.getPgSQLDSN,
		Postgres:   c.getPgSQLDSN,
		Pg:         c.getPgSQLDSN,
		MySQL:      c.getMySQLDSN,
		MariaDB:    c.getMySQLDSN,
		SQLite:     c.getSQLiteDSN,
	}

	if fn, ok := dsnMap[c.Type]; ok {
		return fn()
	}

	return ""
}

// getPgSQLDSN 获取PostgreSQL的DSN，user/pass 注入到 URL 形式的连接串.
func (c *MetadataConfig) getPgSQLDSN() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = DefaultMetadataSSLMode
	}

	return fmt.Sprintf("postgres://%s:%s@%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Pass), c.URL, sslmode)
}

// getMySQLDSN 获取MySQL的DSN. URL host:port/dbname 转换为 tcp(host:port)/dbname.
func (c *MetadataConfig) getMySQLDSN() string {
	host, db := c.URL, ""
	for i := range c.URL {
		if c.URL[i] == '/' {
			host, db = c.URL[:i], c.URL[i+1:]
			break
		}
	}

	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Pass, host, db)
}

// getSQLiteDSN 获取SQLite的DSN（文件路径或 :memory:）.
func (c *MetadataConfig) getSQLiteDSN() string {
	return c.URL
}

// setDefaults 设置元数据库配置的默认值.
func (c *MetadataConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metadata.type", DefaultMetadataType)
	v.SetDefault("metadata.url", DefaultMetadataURL)
	v.SetDefault("metadata.user", DefaultMetadataUser)
	v.SetDefault("metadata.pass", DefaultMetadataPass)
	v.SetDefault("metadata.sslmode", DefaultMetadataSSLMode)
	v.SetDefault("metadata.max_open_conns", DefaultMetadataMaxOpenConns)
	v.SetDefault("metadata.max_idle_conns", DefaultMetadataMaxIdleConns)
}
