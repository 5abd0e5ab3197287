package coordinator

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hildist/hildist/pkg/log"
	"github.com/hildist/hildist/pkg/protocol"
	"github.com/hildist/hildist/pkg/utils"
)

func newError(c echo.Context, err error) error {
	if errors.Is(err, utils.ErrNotFound) {
		return c.JSON(http.StatusNotFound, &protocol.ErrorResponse{Detail: err.Error()})
	}

	if errors.Is(err, utils.ErrBadRequest) {
		return c.JSON(http.StatusBadRequest, &protocol.ErrorResponse{Detail: err.Error()})
	}

	log.Error(c.Request().URL, err)
	return c.JSON(http.StatusInternalServerError, &protocol.ErrorResponse{Detail: err.Error()})
}

func NewHttpHandler(coordinator *Coordinator) http.Handler {
	r := echo.New()
	r.HideBanner = true
	r.Use(utils.HttpLogger)

	r.POST("/worker/register", func(c echo.Context) error {
		request := protocol.RegisterRequest{}
		if err := c.Bind(&request); err != nil {
			return newError(c, fmt.Errorf("%v: %v", utils.ErrBadRequest, err))
		}
		if request.WorkerID == "" {
			return newError(c, fmt.Errorf("%w: a worker id is required", utils.ErrBadRequest))
		}

		info := coordinator.Register(request.WorkerID)
		return c.JSON(http.StatusOK, &protocol.RegisterResponse{
			WorkerID: info.WorkerID,
			PetName:  info.PetName,
		})
	})

	r.POST("/worker/:worker/heartbeat", func(c echo.Context) error {
		if err := coordinator.Heartbeat(c.Param("worker")); err != nil {
			return newError(c, err)
		}
		return c.JSON(http.StatusOK, &protocol.SuccessResponse{Message: "ok"})
	})

	r.GET("/worker/:worker/session", func(c echo.Context) error {
		sessionID, ok, err := coordinator.Assign(c.Param("worker"))
		if err != nil {
			return newError(c, err)
		}
		if !ok {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusOK, &protocol.SessionResponse{SessionID: sessionID})
	})

	r.GET("/worker/:worker/session/:session/env", func(c echo.Context) error {
		env, err := coordinator.Env(c.Param("session"))
		if err != nil {
			return newError(c, err)
		}
		return c.Blob(http.StatusOK, echo.MIMEOctetStream, env)
	})

	r.POST("/worker/session/:session/artifacts", func(c echo.Context) error {
		request := protocol.ArtifactUploadRequest{}
		if err := c.Bind(&request); err != nil {
			return newError(c, fmt.Errorf("%v: %v", utils.ErrBadRequest, err))
		}

		content, err := base64.StdEncoding.DecodeString(request.Content)
		if err != nil {
			return newError(c, fmt.Errorf("%w: artifact content is not valid base64", utils.ErrBadRequest))
		}

		coordinator.AddArtifact(c.Param("session"), request.WorkerID, content)
		return c.JSON(http.StatusOK, &protocol.SuccessResponse{Message: "ok"})
	})

	r.GET("/worker/session/:session/artifacts", func(c echo.Context) error {
		return c.JSON(http.StatusOK, &protocol.ArtifactListResponse{
			ArtifactIDs: coordinator.ArtifactWorkers(c.Param("session")),
		})
	})

	r.GET("/worker/list", func(c echo.Context) error {
		return c.JSON(http.StatusOK, coordinator.Workers())
	})

	r.GET("/worker/:worker/info", func(c echo.Context) error {
		info, err := coordinator.WorkerInfo(c.Param("worker"))
		if err != nil {
			return newError(c, err)
		}
		return c.JSON(http.StatusOK, &info)
	})

	r.POST("/worker/:worker/update", func(c echo.Context) error {
		request := protocol.UpdateWorkerRequest{}
		if err := c.Bind(&request); err != nil {
			return newError(c, fmt.Errorf("%v: %v", utils.ErrBadRequest, err))
		}

		info, err := coordinator.UpdateWorker(c.Param("worker"), request)
		if err != nil {
			return newError(c, err)
		}
		return c.JSON(http.StatusOK, &info)
	})

	return r
}
