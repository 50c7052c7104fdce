// Package docs provides generated OpenAPI documentation.
//
// Podforge API
//
//	@title			Podforge API
//	@version		1.0
//	@description	Podcast generation API for submitting briefs and retrieving episodes, artifacts, and pipeline metrics.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/podforge/podforge
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/podforge/serve.go -o ./swagger --parseDependency --parseInternal
