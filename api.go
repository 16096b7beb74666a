/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/pokerbox/internal/hub"
)

const (
	maxRoomNameLength = 100
	maxRequestBody    = 4096
)

type createRoomRequest struct {
	Name string `json:"name"`
}

type createRoomResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AccessCode string `json:"access_code"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(v)
}

func serveCreateRoom(cfg *Config, reg *hub.Registry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		var req createRoomRequest

		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req)
		if err != nil {
			if err := writeJSON(cfg, w, http.StatusBadRequest, errorResponse{"malformed request body"}); err != nil {
				errs <- err
			}

			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" || utf8.RuneCountInString(name) > maxRoomNameLength {
			if err := writeJSON(cfg, w, http.StatusBadRequest, errorResponse{"room name must be 1-100 characters"}); err != nil {
				errs <- err
			}

			return
		}

		id, code, err := reg.Create(name)
		if err != nil {
			errorf(cfg, "ERROR: creating room: %v", err)

			if err := writeJSON(cfg, w, http.StatusInternalServerError, errorResponse{"unable to create room"}); err != nil {
				errs <- err
			}

			return
		}

		err = writeJSON(cfg, w, http.StatusCreated, createRoomResponse{
			ID:         id,
			Name:       name,
			AccessCode: code,
		})
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Created room %s for %s in %s",
			id,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveListRooms(cfg *Config, reg *hub.Registry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		rooms := reg.List()
		if rooms == nil {
			rooms = []hub.Summary{}
		}

		if err := writeJSON(cfg, w, http.StatusOK, rooms); err != nil {
			errs <- err
		}
	}
}

// registerRooms mounts the room API, the websocket endpoint and share codes:
//
//	POST $prefix/api/rooms         create a room
//	GET  $prefix/api/rooms         list rooms
//	GET  $prefix/ws                websocket for one connection
//	GET  $prefix/rooms/:roomid/qr  PNG QR code linking to the room
func registerRooms(cfg *Config, reg *hub.Registry, mux *httprouter.Router, errs chan<- error) {
	mux.POST(cfg.prefix+"/api/rooms", serveCreateRoom(cfg, reg, errs))
	mux.GET(cfg.prefix+"/api/rooms", serveListRooms(cfg, reg, errs))
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, reg, newUpgrader(cfg)))
	mux.GET(cfg.prefix+"/rooms/:roomid/qr", serveQR(cfg, reg, errs))
}
