package main

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("write json response")
	}
}

// lobbyURL is the shareable link that drops a browser into a lobby
func lobbyURL(publicURL, id string) string {
	return strings.TrimRight(publicURL, "/") + "/lobbies/" + id
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub, registry *Registry, analytics *Analytics, cfg Config) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/find-lobby", func(w http.ResponseWriter, r *http.Request) {
		id, err := registry.FindLobby()
		if errors.Is(err, ErrCapacity) {
			logger.Info("find-lobby: at capacity")
			writeJSON(w, http.StatusOK, FindLobbyResponse{})
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, FindLobbyResponse{Lobby: &id})
	})

	mux.HandleFunc("GET /api/lobbies", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, registry.List())
	})

	mux.HandleFunc("GET /api/lobbies/{id}/qr", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := registry.Lookup(id); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		png, err := qrcode.Encode(lobbyURL(cfg.PublicURL, id), qrcode.Medium, qrSize)
		if err != nil {
			logger.WithError(err).Error("qr encode")
			http.Error(w, "qr error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, analytics.Snapshot())
	})

	// WebSocket endpoint, one namespace per lobby
	mux.HandleFunc("GET /lobbies/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		game, err := registry.Lookup(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if !websocket.IsWebSocketUpgrade(r) {
			// a browser following a shared link
			if cfg.ClientDir != "" {
				w.Header().Set("Cache-Control", "no-cache")
				http.ServeFile(w, r, filepath.Join(cfg.ClientDir, "index.html"))
				return
			}
			http.Error(w, "websocket upgrade required", http.StatusBadRequest)
			return
		}

		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Warn("upgrade error")
			return
		}
		hub.TrackConnect(ip)

		client := NewClient(hub, conn, CodecByName(r.URL.Query().Get("codec")), ip)
		go client.WritePump()
		if err := hub.Attach(game, client); err != nil {
			client.log().WithError(err).Info("lobby gone before attach")
			hub.TrackDisconnect(ip)
			client.Close()
			return
		}
		go client.ReadPump()
	})

	if cfg.ClientDir != "" {
		// Serve static files with no-cache so browsers always revalidate
		fs := http.FileServer(http.Dir(cfg.ClientDir))
		mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			fs.ServeHTTP(w, r)
		}))
	}

	return mux
}
