package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const testConfig = `http_server:
  port: 8080
  allowed_origins: http://localhost:3000
database:
  source: postgres://localhost/pass_management
  max_open_conns: 10
  max_idle_conns: 2
security:
  jwt_secret: %s
  token_duration: 2h
`

var _ = Describe("loadConfig", func() {
	var dir string

	writeConfig := func(secret string) {
		body := strings.Replace(testConfig, "%s", secret, 1)
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		GinkgoT().Setenv("APP_ENV", "")
		GinkgoT().Setenv("DOCKER_ENV", "")
	})

	It("should read config.yml and fill defaults", func() {
		writeConfig("0123456789abcdef0123456789abcdef")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Security.TokenDuration).To(Equal(2 * time.Hour))
		Expect(cfg.Pass.RejectionReasonMaxLength).To(Equal(500))
	})

	It("should let ENV_ variables override file keys", func() {
		writeConfig("0123456789abcdef0123456789abcdef")
		GinkgoT().Setenv("ENV_DATABASE_SOURCE", "postgres://override/pass")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.GetDSN()).To(Equal("postgres://override/pass"))
	})

	It("should name the file when validation fails", func() {
		writeConfig("short")

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("config.yml")))
		Expect(err).To(MatchError(ContainSubstring("jwt_secret")))
	})

	It("should fail without a config file", func() {
		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("reading config")))
	})

	It("should read the environment in production", func() {
		GinkgoT().Setenv("APP_ENV", "production")
		GinkgoT().Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
		GinkgoT().Setenv("DATABASE_URL", "postgres://db/pass")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Source).To(Equal("postgres://db/pass"))
	})
})

var _ = Describe("readAdminPassword", func() {
	BeforeEach(func() {
		GinkgoT().Setenv("ADMIN_PASSWORD", "")
	})

	It("should prefer ADMIN_PASSWORD", func() {
		GinkgoT().Setenv("ADMIN_PASSWORD", "from-env-123")
		pw, err := readAdminPassword(strings.NewReader("ignored\n"), &bytes.Buffer{})
		Expect(err).NotTo(HaveOccurred())
		Expect(pw).To(Equal("from-env-123"))
	})

	It("should read one line from a non-terminal stdin", func() {
		pw, err := readAdminPassword(strings.NewReader("s3cret-pass\r\nnext\n"), &bytes.Buffer{})
		Expect(err).NotTo(HaveOccurred())
		Expect(pw).To(Equal("s3cret-pass"))
	})

	It("should refuse an empty password", func() {
		_, err := readAdminPassword(strings.NewReader(""), &bytes.Buffer{})
		Expect(err).To(MatchError("no password given"))
	})
})
