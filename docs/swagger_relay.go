package docs

// @title           Location Relay API
// @version         1.0
// @description     Real-time location relay. Clients of one shop join over a websocket and every location message one of them sends is fanned out to the others.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /
