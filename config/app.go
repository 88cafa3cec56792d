package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB     int    `env:"REDIS_DB"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	GatewayURL  string `env:"GATEWAY_URL"`
	GatewayKey  string `env:"GATEWAY_API_KEY"`
	CallbackTok string `env:"GATEWAY_CALLBACK_TOKEN"`
	UploadDir   string `env:"UPLOAD_DIR" default:"./uploads"`
	Env         string `env:"APP_ENV" default:"dev"`
}
