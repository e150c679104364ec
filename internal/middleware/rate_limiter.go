package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sergio129/SaludDirecta/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Per-IP sliding-window limiting. Two instances are wired in the router:
// a strict one on /auth/login and /auth/registro against credential
// guessing, and a loose one covering the whole API.

type visitante struct {
	mu      sync.Mutex
	hits    int
	ventana time.Time // end of the current window
}

type ipLimiter struct {
	ambito string // label for the purge log
	max    int
	window time.Duration

	mu         sync.Mutex
	visitantes map[string]*visitante
}

func newIPLimiter(ambito string, max int, window time.Duration) *ipLimiter {
	l := &ipLimiter{
		ambito:     ambito,
		max:        max,
		window:     window,
		visitantes: make(map[string]*visitante),
	}
	go l.purgar()
	return l
}

// tomar consumes one slot for ip. When the limit is hit it returns false
// plus the instant the window reopens.
func (l *ipLimiter) tomar(ip string) (bool, time.Time) {
	l.mu.Lock()
	v, ok := l.visitantes[ip]
	if !ok {
		v = &visitante{}
		l.visitantes[ip] = v
	}
	l.mu.Unlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	now := time.Now()
	if now.After(v.ventana) {
		v.hits = 0
		v.ventana = now.Add(l.window)
	}
	v.hits++
	return v.hits <= l.max, v.ventana
}

// purgar drops IPs whose window expired so the map does not grow with
// every client that ever connected.
func (l *ipLimiter) purgar() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purgados := 0
		for ip, v := range l.visitantes {
			v.mu.Lock()
			if now.After(v.ventana) {
				delete(l.visitantes, ip)
				purgados++
			}
			v.mu.Unlock()
		}
		restantes := len(l.visitantes)
		l.mu.Unlock()

		if purgados > 0 {
			log.Debug().
				Str("ambito", l.ambito).
				Int("purgados", purgados).
				Int("restantes", restantes).
				Msg("rate limiter: ventanas expiradas eliminadas")
		}
	}
}

func (l *ipLimiter) handler(detalle string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, reapertura := l.tomar(c.ClientIP())
		if !ok {
			segundos := int(time.Until(reapertura).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(segundos))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New(apierror.KindRateLimited, detalle))
			return
		}
		c.Next()
	}
}

// loginLimiter is shared by login and registro: both accept credentials
// from unauthenticated callers.
var loginLimiter = newIPLimiter("auth", 15, 5*time.Minute)

// LoginRateLimiter allows 15 credential attempts per IP every 5 minutes.
func LoginRateLimiter() gin.HandlerFunc {
	return loginLimiter.handler("Demasiados intentos de acceso. Intente más tarde.")
}

// RateLimiter builds a general per-IP limiter for the given budget.
func RateLimiter(max int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter("api", max, window).
		handler("Demasiadas solicitudes. Intente nuevamente en un momento.")
}
