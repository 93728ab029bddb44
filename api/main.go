package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const version = "1.0.0"

type config struct {
	port int
	env  string
	db   struct {
		dsn                string
		maxOpenConnections int
		maxIdleConnections int
		maxIdleTime        time.Duration
	}
	jwtSecret  string
	sessionTTL time.Duration
	limiter    struct {
		enabled             bool
		maxRequestPerSecond float64
		burst               int
	}
	cors struct {
		trustedOrigins []string
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	admin struct {
		username string
		email    string
		password string
	}
	staticDir string
}

type application struct {
	config config
	store  store
	mailer *mailer
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	_ = godotenv.Load()

	var cfg config
	flag.IntVar(&cfg.port, "port", 3000, "Server port")
	flag.StringVar(&cfg.env, "env", "development", "Environment [development|production]")

	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConnections, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConnections, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	flag.DurationVar(&cfg.db.maxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max connection idle time")

	flag.StringVar(&cfg.jwtSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "Session token signing secret")
	flag.DurationVar(&cfg.sessionTTL, "session-ttl", 24*time.Hour, "Session lifetime")

	flag.BoolVar(&cfg.limiter.enabled, "limiter-enabled", false, "Enable per-IP rate limiting")
	flag.Float64Var(&cfg.limiter.maxRequestPerSecond, "limiter-rps", 10, "Rate limiter max requests per second")
	flag.IntVar(&cfg.limiter.burst, "limiter-burst", 20, "Rate limiter burst")

	flag.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(s string) error {
		cfg.cors.trustedOrigins = strings.Fields(s)
		return nil
	})

	flag.StringVar(&cfg.smtp.host, "smtp-host", os.Getenv("SMTP_HOST"), "SMTP host")
	smtpPort := 25
	if s := os.Getenv("SMTP_PORT"); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil {
			log.Fatalf("invalid SMTP_PORT %q: %v", s, err)
		}
		smtpPort = p
	}
	flag.IntVar(&cfg.smtp.port, "smtp-port", smtpPort, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", os.Getenv("SMTP_SENDER"), "SMTP sender")

	flag.StringVar(&cfg.admin.username, "admin-username", os.Getenv("ADMIN_USERNAME"), "Seed admin username")
	flag.StringVar(&cfg.admin.email, "admin-email", os.Getenv("ADMIN_EMAIL"), "Seed admin email")
	flag.StringVar(&cfg.admin.password, "admin-password", os.Getenv("ADMIN_PASSWORD"), "Seed admin password")

	flag.StringVar(&cfg.staticDir, "static-dir", os.Getenv("STATIC_DIR"), "Directory of static assets served at / (optional)")
	flag.Parse()

	if cfg.jwtSecret == "" {
		secret := make([]byte, 32)
		_, err := rand.Read(secret)
		if err != nil {
			log.Fatal(err)
		}
		cfg.jwtSecret = hex.EncodeToString(secret)
		log.Println("no jwt secret configured, generated an ephemeral one; sessions will not survive a restart")
	}

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("established a connection with database")

	err = migrate(db)
	if err != nil {
		log.Fatal(err)
	}

	app := &application{
		config: cfg,
		store:  newSQLStore(db),
	}
	if cfg.smtp.host != "" {
		app.mailer = newMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)
	}

	err = seedAdmin(app.store, cfg)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.port),
		Handler:      composeRoutes(app),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Printf("Starting %s server on port %d\n", cfg.env, cfg.port)
	err = srv.ListenAndServe()
	log.Fatal(err)
}

// seedAdmin creates the admin account from configuration. Signup always
// assigns the USER role, so seeding is the only way an admin comes to
// exist. A no-op when the account is already there or seeding is not
// configured.
func seedAdmin(s store, cfg config) error {
	if cfg.admin.username == "" || cfg.admin.email == "" || cfg.admin.password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.admin.password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := &user{
		Username:     cfg.admin.username,
		Email:        cfg.admin.email,
		PasswordHash: hash,
		Role:         roleAdmin,
	}
	err = s.insertUser(u)
	if errors.Is(err, errDuplicateUsername) || errors.Is(err, errDuplicateEmail) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("seeded admin account %q", u.Username)
	return nil
}
