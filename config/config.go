package config

import "time"

type Config struct {
	Web      Web
	DB       DB
	Cors     Cors
	Stripe   Stripe
	Email    Email
	Frontend Frontend
	Admin    Admin
	Limiter  Limiter
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost"`
	Name       string `conf:"default:cursos"`
	DisableTLS bool   `conf:"default:true"`
}

type Cors struct {
	Origin string `conf:"default:http://localhost:5173"`
}

type Stripe struct {
	APISecret     string `conf:"mask"`
	WebhookSecret string `conf:"mask"`
}

type Email struct {
	APIKey string `conf:"mask"`
	From   string `conf:"default:onboarding@resend.dev"`
	Name   string `conf:"default:Français Intelligent"`
}

// Frontend is the base URL the checkout redirects and email links point at.
type Frontend struct {
	URL string `conf:"default:http://localhost:5173"`
}

// Admin seeds the bootstrap account. The seed is skipped when the
// password is empty.
type Admin struct {
	Folio    string `conf:"default:ADTF001"`
	Email    string `conf:"default:admin@francaisintelligent.com"`
	Password string `conf:"mask"`
}

type Limiter struct {
	Burst    int           `conf:"default:5"`
	Interval time.Duration `conf:"default:1s"`
	Expiry   int           `conf:"default:10"`
}
