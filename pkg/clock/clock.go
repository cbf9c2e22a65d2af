package clock

import (
	"sync"
	"time"
)

// Clock abstrae el reloj del sistema para que vencimientos (cotizaciones, cuentas
// por cobrar) sean verificables en tests sin dormir ni depender de time.Now.
type Clock interface {
	Now() time.Time
}

// Real usa el reloj del sistema.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed es un reloj controlado manualmente para tests.
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixed crea un reloj congelado en t.
func NewFixed(t time.Time) *Fixed { return &Fixed{t: t} }

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Advance mueve el reloj hacia adelante.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// Set fija el reloj en t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}
