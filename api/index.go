package handler

import (
	"net/http"

	"boligmatch-backend/bootstrap"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var fiberApp *fiber.App

func init() {
	var err error
	fiberApp, err = bootstrap.New()
	if err != nil {
		panic("app create: " + err.Error())
	}
}

// Handler is the serverless entry point. All requests are rewritten here.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()
	adaptor.FiberApp(fiberApp)(w, r)
}
