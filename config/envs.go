package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	ProxyIP  string // Proxy IP the gRPC control API listens on
	HostIP   string // Host IP the UDP socket binds to
	GrpcPort int    // Port for the gRPC server

	UdpPort                int // Port for the UDP socket
	UDPBufferSize          int // Size of the buffer for incoming UDP packets (in bytes)
	UDPHeartbeatExpiration int // Expiration time for UDP heartbeat (in milliseconds)

	CubeSize           int // Odd side length of every face
	CubeQueueLimit     int // Open cells kept per face, 0 for size²/4
	CubeLedgerLimit    int // Seam ledger length, 0 for size*6
	CubeStepsPerTick   int // Carving steps per tick
	CubeTickMs         int // Tick period (in milliseconds)
	CubeSessionMinutes int // Lifetime of a cube session
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig loads an optional .env file and reads the environment.
func initConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		ProxyIP:  mustGetEnv("PROXY_IP"),
		HostIP:   mustGetEnv("HOST_IP"),
		GrpcPort: mustGetEnvAsInt("GRPC_PORT"),

		UdpPort:                mustGetEnvAsInt("UDP_PORT"),
		UDPBufferSize:          mustGetEnvAsInt("UDP_BUFFER_SIZE"),
		UDPHeartbeatExpiration: mustGetEnvAsInt("UDP_HEARTBEAT_EXPIRATION"),

		CubeSize:           getEnvAsInt("CUBE_SIZE", 21),
		CubeQueueLimit:     getEnvAsInt("CUBE_QUEUE_LIMIT", 0),
		CubeLedgerLimit:    getEnvAsInt("CUBE_LEDGER_LIMIT", 0),
		CubeStepsPerTick:   getEnvAsInt("CUBE_STEPS_PER_TICK", 4),
		CubeTickMs:         getEnvAsInt("CUBE_TICK_MS", 70),
		CubeSessionMinutes: getEnvAsInt("CUBE_SESSION_MINUTES", 30),
	}
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("%s[APP]%s %s[FATAL]%s Environment variable %s is not set", ColorGreen, ColorReset, ColorRed, ColorReset, key)
	}
	return value
}

// mustGetEnvAsInt is mustGetEnv for integers.
func mustGetEnvAsInt(key string) int {
	value, err := strconv.Atoi(mustGetEnv(key))
	if err != nil {
		log.Fatalf("%s[APP]%s %s[FATAL]%s Environment variable %s must be an integer: %v", ColorGreen, ColorReset, ColorRed, ColorReset, key, err)
	}
	return value
}

// getEnvAsInt returns fallback when key is unset.
func getEnvAsInt(key string, fallback int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("%s[APP]%s %s[FATAL]%s Environment variable %s must be an integer: %v", ColorGreen, ColorReset, ColorRed, ColorReset, key, err)
	}
	return value
}
