package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RegisterDocs serves the OpenAPI document and the swagger UI.
func RegisterDocs(router *gin.Engine) {
	router.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerDoc))
	})
	router.GET("/docs/*any", gin.WrapH(http.StripPrefix("/docs", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))))
}

const swaggerDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "Teranga Bus API",
    "description": "Reservation de billets de bus : recherche de trajets, reservations avec expiration, verification d'email.",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/public/trajets/search": {
      "get": {
        "summary": "Recherche de trajets",
        "parameters": [
          {"name": "ville_depart", "in": "query", "type": "string", "required": true},
          {"name": "ville_arrivee", "in": "query", "type": "string", "required": true},
          {"name": "date_depart", "in": "query", "type": "string", "required": true}
        ],
        "responses": {"200": {"description": "liste des trajets"}}
      }
    },
    "/reservations": {
      "post": {
        "summary": "Creer une reservation (siege bloque 10 minutes)",
        "parameters": [{"name": "body", "in": "body", "schema": {"type": "object", "properties": {"trajet_id": {"type": "integer"}, "siege_numero": {"type": "integer"}, "moyen_paiement": {"type": "string"}}}}],
        "responses": {"201": {"description": "reservation creee"}, "400": {"description": "siege deja reserve ou donnees invalides"}}
      }
    },
    "/public/reservations/code/{code}": {
      "get": {
        "summary": "Consulter une reservation par code",
        "parameters": [{"name": "code", "in": "path", "type": "string", "required": true}],
        "responses": {"200": {"description": "resume de la reservation"}, "404": {"description": "introuvable"}}
      }
    },
    "/public/email/verify-email/{token}": {
      "get": {
        "summary": "Confirmer une adresse email",
        "parameters": [{"name": "token", "in": "path", "type": "string", "required": true}],
        "responses": {"200": {"description": "VERIFIED ou ALREADY_VERIFIED"}, "400": {"description": "INVALID_TOKEN"}}
      }
    },
    "/email/resend-verification": {
      "post": {
        "summary": "Renvoyer l'email de confirmation (3 par heure)",
        "responses": {"200": {"description": "reponse generique"}, "429": {"description": "RATE_LIMITED"}}
      }
    },
    "/public/contact": {
      "post": {
        "summary": "Envoyer un message de contact",
        "responses": {"201": {"description": "message enregistre"}}
      }
    }
  }
}`
