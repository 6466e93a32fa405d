package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"resumetailor/internal/config"
	"resumetailor/internal/errors"
	"resumetailor/internal/observability"

	"github.com/fsnotify/fsnotify"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ReloadCallback is called after each certificate reload attempt
type ReloadCallback func(success bool, err error)

// CertificateMetrics tracks certificate reload statistics
type CertificateMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// CertificateManager keeps the server's TLS material current. It loads
// certificates from files or inline content, watches certificate files with
// fsnotify, and optionally polls Vault for rotated secrets. Handshakes always
// see the most recently loaded certificate.
type CertificateManager struct {
	mu sync.RWMutex

	tlsConfig        *config.TLSConfig
	autoReloadConfig *config.AutoReloadConfig
	vaultClient      VaultClientInterface
	om               *observability.ObservabilityManager
	logger           *errors.Logger

	serverCert       *tls.Certificate
	serverCertExpiry time.Time
	caCertPool       *x509.CertPool

	fileWatcher     *fsnotify.Watcher
	watchedFiles    []string
	vaultWatcher    *VaultWatcher
	reloadCallbacks []ReloadCallback
	metrics         CertificateMetrics

	stopChan chan struct{}
	running  bool
}

// NewCertificateManager creates a certificate manager
func NewCertificateManager(tlsConfig *config.TLSConfig, autoReloadConfig *config.AutoReloadConfig, vaultClient VaultClientInterface, om *observability.ObservabilityManager, logger *errors.Logger) *CertificateManager {
	return &CertificateManager{
		tlsConfig:        tlsConfig,
		autoReloadConfig: autoReloadConfig,
		vaultClient:      vaultClient,
		om:               om,
		logger:           logger,
		stopChan:         make(chan struct{}),
	}
}

// Start loads the initial certificates and begins watching for changes
func (cm *CertificateManager) Start() error {
	if err := cm.reload(); err != nil {
		return fmt.Errorf("initial certificate load failed: %w", err)
	}

	if cm.autoReloadConfig.FileWatcher.Enabled {
		if err := cm.startFileWatcher(); err != nil {
			return err
		}
	}

	if cm.autoReloadConfig.VaultWatcher.Enabled && cm.vaultClient != nil {
		if err := cm.startVaultWatcher(); err != nil {
			return err
		}
	}

	cm.mu.Lock()
	cm.running = true
	cm.mu.Unlock()

	return nil
}

// Stop stops all watchers
func (cm *CertificateManager) Stop() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.running {
		return nil
	}
	cm.running = false
	close(cm.stopChan)

	if cm.fileWatcher != nil {
		if err := cm.fileWatcher.Close(); err != nil {
			return fmt.Errorf("failed to close certificate file watcher: %w", err)
		}
	}

	if cm.vaultWatcher != nil {
		return cm.vaultWatcher.Stop()
	}

	return nil
}

// startFileWatcher watches the certificate and key files for changes
func (cm *CertificateManager) startFileWatcher() error {
	if cm.tlsConfig.CertFile == "" || cm.tlsConfig.KeyFile == "" {
		// Content-based certificates have no files to watch
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create certificate file watcher: %w", err)
	}

	files := []string{cm.tlsConfig.CertFile, cm.tlsConfig.KeyFile}
	if cm.tlsConfig.CAFile != "" {
		files = append(files, cm.tlsConfig.CAFile)
	}
	for _, file := range files {
		if err := watcher.Add(file); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch certificate file %s: %w", file, err)
		}
	}

	cm.fileWatcher = watcher
	cm.watchedFiles = files

	go cm.watchLoop()

	if cm.logger != nil {
		cm.logger.Info("Certificate file watcher started", "files", files)
	}

	return nil
}

// watchLoop handles fsnotify events with debouncing. Certificate rotation
// typically rewrites cert and key in quick succession; the debounce delay
// collapses those events into a single reload.
func (cm *CertificateManager) watchLoop() {
	debounce := cm.autoReloadConfig.FileWatcher.DebounceDelay
	if debounce <= 0 {
		debounce = time.Second
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-cm.fileWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			if err := cm.reload(); err != nil && cm.logger != nil {
				cm.logger.LogError(err, "Certificate reload after file change failed")
			}
			// Rename/remove during rotation can drop the watch; re-add
			for _, file := range cm.watchedFiles {
				_ = cm.fileWatcher.Add(file)
			}
		case err, ok := <-cm.fileWatcher.Errors:
			if !ok {
				return
			}
			if cm.logger != nil {
				cm.logger.LogError(err, "Certificate file watcher error")
			}
		case <-cm.stopChan:
			return
		}
	}
}

// startVaultWatcher polls Vault for rotated TLS secrets
func (cm *CertificateManager) startVaultWatcher() error {
	vw := NewVaultWatcher(
		cm.vaultClient,
		cm.autoReloadConfig.VaultWatcher.SecretPath,
		cm.autoReloadConfig.VaultWatcher.PollInterval,
		func(data *CertificateData, err error) {
			if err != nil {
				cm.recordReload(false, err)
				return
			}
			cm.mu.Lock()
			cm.tlsConfig.CertContent = data.CertContent
			cm.tlsConfig.KeyContent = data.KeyContent
			if data.CAContent != "" {
				cm.tlsConfig.CAContent = data.CAContent
			}
			cm.mu.Unlock()

			if reloadErr := cm.reload(); reloadErr != nil && cm.logger != nil {
				cm.logger.LogError(reloadErr, "Certificate reload from Vault failed")
			}
		},
		cm.logger,
	)

	if err := vw.Start(); err != nil {
		return fmt.Errorf("failed to start Vault watcher: %w", err)
	}
	cm.vaultWatcher = vw

	return nil
}

// reload loads certificates and swaps them in atomically
func (cm *CertificateManager) reload() error {
	cert, err := cm.loadKeyPair()
	if err != nil {
		cm.recordReload(false, err)
		return err
	}

	expiry, err := certificateExpiry(&cert)
	if err != nil {
		cm.recordReload(false, err)
		return err
	}

	var caPool *x509.CertPool
	if cm.tlsConfig.Mode == "mutual" {
		caPool, err = cm.loadCAPool()
		if err != nil {
			cm.recordReload(false, err)
			return err
		}
	}

	cm.mu.Lock()
	cm.serverCert = &cert
	cm.serverCertExpiry = expiry
	if caPool != nil {
		cm.caCertPool = caPool
	}
	cm.mu.Unlock()

	cm.recordReload(true, nil)
	return nil
}

// loadKeyPair loads the server certificate from content or files
func (cm *CertificateManager) loadKeyPair() (tls.Certificate, error) {
	if cm.tlsConfig.CertContent != "" && cm.tlsConfig.KeyContent != "" {
		cert, err := tls.X509KeyPair([]byte(cm.tlsConfig.CertContent), []byte(cm.tlsConfig.KeyContent))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
		return cert, nil
	}

	if cm.tlsConfig.CertFile != "" && cm.tlsConfig.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cm.tlsConfig.CertFile, cm.tlsConfig.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
		}
		return cert, nil
	}

	return tls.Certificate{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
}

// loadCAPool loads the CA pool for client certificate verification
func (cm *CertificateManager) loadCAPool() (*x509.CertPool, error) {
	var caPEM []byte
	switch {
	case cm.tlsConfig.CAContent != "":
		caPEM = []byte(cm.tlsConfig.CAContent)
	case cm.tlsConfig.CAFile != "":
		data, err := os.ReadFile(cm.tlsConfig.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		caPEM = data
	default:
		return nil, fmt.Errorf("CA certificate is required for mutual TLS mode")
	}

	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(caPEM); !ok {
		return nil, fmt.Errorf("failed to append CA cert")
	}
	return pool, nil
}

// certificateExpiry parses the leaf certificate's NotAfter
func certificateExpiry(cert *tls.Certificate) (time.Time, error) {
	if len(cert.Certificate) == 0 {
		return time.Time{}, fmt.Errorf("certificate chain is empty")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse certificate: %w", err)
	}
	return leaf.NotAfter, nil
}

// recordReload updates counters, metrics and callbacks for one reload attempt
func (cm *CertificateManager) recordReload(success bool, err error) {
	cm.mu.Lock()
	cm.metrics.ReloadCount++
	cm.metrics.LastReloadTime = time.Now()
	cm.metrics.LastReloadSuccess = success
	if success {
		cm.metrics.ReloadSuccessCount++
		cm.metrics.LastReloadError = ""
	} else {
		cm.metrics.ReloadFailureCount++
		cm.metrics.LastReloadError = err.Error()
	}
	callbacks := make([]ReloadCallback, len(cm.reloadCallbacks))
	copy(callbacks, cm.reloadCallbacks)
	expiry := cm.serverCertExpiry
	cm.mu.Unlock()

	if cm.om != nil {
		metrics := cm.om.GetMetrics()
		ctx := context.Background()
		if metrics.CertReloadCount != nil {
			metrics.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
		}
		if metrics.CertExpiryTime != nil && !expiry.IsZero() {
			metrics.CertExpiryTime.Record(ctx, time.Until(expiry).Seconds())
		}
	}

	for _, callback := range callbacks {
		callback(success, err)
	}
}

// GetServerCertificate returns the current server certificate for TLS handshakes
func (cm *CertificateManager) GetServerCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}

	if time.Now().After(cm.serverCertExpiry) {
		if cm.logger != nil {
			cm.logger.LogError(fmt.Errorf("server certificate expired"), "Server certificate expired",
				"expiry", cm.serverCertExpiry,
				"server_name", hello.ServerName)
		}
		return nil, fmt.Errorf("server certificate expired")
	}

	return cm.serverCert, nil
}

// GetCACertPool returns the current CA certificate pool
func (cm *CertificateManager) GetCACertPool() *x509.CertPool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.caCertPool
}

// VerifyPeerCertificate verifies peer certificates using the current CA pool
func (cm *CertificateManager) VerifyPeerCertificate(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return fmt.Errorf("no peer certificates provided")
	}

	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("failed to parse peer certificate: %w", err)
	}

	caCertPool := cm.GetCACertPool()
	if caCertPool == nil {
		return fmt.Errorf("no CA certificate pool available")
	}

	_, err = cert.Verify(x509.VerifyOptions{Roots: caCertPool})
	if err != nil {
		return fmt.Errorf("peer certificate verification failed: %w", err)
	}

	return nil
}

// ReloadCertificates manually triggers a certificate reload
func (cm *CertificateManager) ReloadCertificates() error {
	return cm.reload()
}

// AddReloadCallback adds a callback to be called when certificates are reloaded
func (cm *CertificateManager) AddReloadCallback(callback ReloadCallback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.reloadCallbacks = append(cm.reloadCallbacks, callback)
}

// CheckExpiry returns the time until the server certificate expires
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCertExpiry.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(cm.serverCertExpiry), nil
}

// GetMetrics returns certificate management metrics
func (cm *CertificateManager) GetMetrics() *CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	snapshot := cm.metrics
	return &snapshot
}

// WatchedFiles returns the certificate files under watch, for health reporting
func (cm *CertificateManager) WatchedFiles() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.watchedFiles
}

// FileWatcherRunning reports whether the file watcher is active
func (cm *CertificateManager) FileWatcherRunning() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.running && cm.fileWatcher != nil
}

// VaultWatcherStatus returns the Vault watcher status, or nil when disabled
func (cm *CertificateManager) VaultWatcherStatus() map[string]any {
	cm.mu.RLock()
	vw := cm.vaultWatcher
	cm.mu.RUnlock()

	if vw == nil {
		return nil
	}
	return vw.Status()
}
