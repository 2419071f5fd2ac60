package api

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

const (
	certValidity    = 365 * 24 * time.Hour
	certRenewBefore = 30 * 24 * time.Hour
)

// newLocalhostCertificate returns PEM encoded certificate and PKCS#8 key of a
// self-signed P-256 certificate valid for the loopback addresses only
func newLocalhostCertificate(now time.Time) (certPEM, keyPEM []byte, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate ECDSA key: %v", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate serial number: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"Sentient Wallet"},
			CommonName:   "localhost",
		},
		NotBefore:   now.Add(-time.Minute),
		NotAfter:    now.Add(certValidity),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:    []string{"localhost"},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create certificate: %v", err)
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal private key: %v", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8})
	return certPEM, keyPEM, nil
}

// parseAPICertificate rejects pairs that do not match and certificates that
// expire within certRenewBefore of now
func parseAPICertificate(certPEM, keyPEM []byte, now time.Time) (tls.Certificate, error) {
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to load X509 key pair: %v", err)
	}

	leaf := pair.Leaf
	if leaf == nil {
		if leaf, err = x509.ParseCertificate(pair.Certificate[0]); err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to parse certificate: %v", err)
		}
	}

	if now.Add(certRenewBefore).After(leaf.NotAfter) {
		return tls.Certificate{}, fmt.Errorf("certificate expires %v", leaf.NotAfter)
	}
	return pair, nil
}

// loadOrGenerateAPICertificates reuses api_tls_cert/api_tls_key (relative to
// the data dir) and regenerates them when they are missing or unusable
func loadOrGenerateAPICertificates(config *utils.ConfigManager, paths *utils.AppPaths, logger *utils.LogsManager) (tls.Certificate, error) {
	certPath := paths.GetDataPath(config.GetConfigWithDefault("api_tls_cert", "api-cert.pem"))
	keyPath := paths.GetDataPath(config.GetConfigWithDefault("api_tls_key", "api-key.pem"))
	now := time.Now()

	certPEM, certErr := os.ReadFile(certPath)
	keyPEM, keyErr := os.ReadFile(keyPath)
	if certErr == nil && keyErr == nil {
		pair, err := parseAPICertificate(certPEM, keyPEM, now)
		if err == nil {
			logger.Info(fmt.Sprintf("Loaded API certificate from %s", certPath), "api")
			return pair, nil
		}
		logger.Warn(fmt.Sprintf("Replacing API certificate: %v", err), "api")
	}

	certPEM, keyPEM, err := newLocalhostCertificate(now)
	if err != nil {
		return tls.Certificate{}, err
	}
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to write certificate file: %v", err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to write private key file: %v", err)
	}
	logger.Info(fmt.Sprintf("Generated API certificate at %s", certPath), "api")

	return parseAPICertificate(certPEM, keyPEM, now)
}
