package main

type Config struct {
	Server struct {
		Listen     string `yaml:"listen"`
		MaxClients int    `yaml:"max-clients"`
		TLS        struct {
			Certificate string `yaml:"certificate"`
			Key         string `yaml:"key"`
			ClientCA    string `yaml:"client-ca"`
			MinVersion  string `yaml:"min-version"`
		} `yaml:"tls"`
		Authenticator struct {
			Type   string `yaml:"type"`
			Config string `yaml:"config"`
		} `yaml:"authenticator"`
	} `yaml:"server"`

	Socket struct {
		Protocols            []string `yaml:"protocols"`
		MaxSendQueue         int      `yaml:"max-send-queue"`
		MaxMessageSize       int64    `yaml:"max-message-size"`
		MaxFrameSize         int64    `yaml:"max-frame-size"`
		AcceptUnmaskedFrames bool     `yaml:"accept-unmasked-frames"`
	} `yaml:"socket"`
}

func defaultConfig() *Config {
	config := &Config{}
	config.Server.Listen = "127.0.0.1:9000"
	return config
}
