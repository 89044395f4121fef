package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
Location relay: fans out courier location updates among the clients of one shop.

Usage:
  relay [--config-path <file>]
  relay --help

Options:
  --help               Show this screen.
  --config-path <file> YAML config flattened into environment variables (default: config.yaml).
                       A .env file in the working directory is loaded as well.

Environment:
  SERVICE_NAME, LOG_LEVEL, SHUTDOWN_TIMEOUT, WEBSOCKET_PORT, RELAY_ALLOWED_ORIGINS,
  RELAY_AUTH_TIMEOUT, RELAY_GATE_UNTIL_AUTHORIZED, RELAY_ENFORCE_SHOP_CLAIM,
  RELAY_SEND_BUFFER, RELAY_MAX_MESSAGE_SIZE, RELAY_WRITE_WAIT, RELAY_PONG_WAIT,
  RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_TRUSTED_PROXIES, AUTH_JWT_SECRET

Clients connect to ws://<host>:<WEBSOCKET_PORT>/?userId=<id>&shopName=<shop>&token=<jwt>
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}
