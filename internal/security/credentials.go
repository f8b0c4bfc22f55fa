package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"

	"codereview/internal/common"
)

// Notification secrets (SMTP passwords, JIRA tokens) referenced by a
// profile's notification.config are never committed to the audit
// repository. They live in the system keyring, with an encrypted file
// fallback when no keyring is available.

const (
	keyringService   = "codereview"
	saltSize         = 32
	pbkdf2Iterations = 100000
	keySize          = 32 // AES-256
)

// CredentialManager handles secure storage and retrieval of notification
// credentials, keyed by the credential_key values in notification.config
type CredentialManager struct {
	useKeyring bool
	masterKey  []byte
}

// Credential is one stored secret
type Credential struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Encrypted bool   `json:"encrypted"`
}

// NewCredentialManager creates a credential manager, preferring the system
// keyring
func NewCredentialManager() (*CredentialManager, error) {
	cm := &CredentialManager{useKeyring: isKeyringAvailable()}

	if !cm.useKeyring {
		key, err := cm.getMasterKey()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize master key: %w", err)
		}
		cm.masterKey = key
	}
	return cm, nil
}

// Store saves a credential under the given key
func (cm *CredentialManager) Store(name, value string) error {
	if cm.useKeyring {
		return keyring.Set(keyringService, name, value)
	}

	encrypted, err := cm.encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt credential: %w", err)
	}
	return cm.saveCredentialFile(name, &Credential{Name: name, Value: encrypted, Encrypted: true})
}

// Get retrieves a credential by key
func (cm *CredentialManager) Get(name string) (string, error) {
	if cm.useKeyring {
		value, err := keyring.Get(keyringService, name)
		if err != nil {
			return "", fmt.Errorf("failed to read credential %q from keyring: %w", name, err)
		}
		return value, nil
	}

	cred, err := cm.loadCredentialFile(name)
	if err != nil {
		return "", err
	}
	if !cred.Encrypted {
		return cred.Value, nil
	}
	return cm.decrypt(cred.Value)
}

// Delete removes a stored credential
func (cm *CredentialManager) Delete(name string) error {
	if cm.useKeyring {
		return keyring.Delete(keyringService, name)
	}
	return os.Remove(cm.credentialPath(name))
}

// List returns stored credential names (file fallback only; the system
// keyring does not support enumeration)
func (cm *CredentialManager) List() ([]string, error) {
	entries, err := os.ReadDir(cm.credentialsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".cred") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".cred"))
		}
	}
	return names, nil
}

func isKeyringAvailable() bool {
	probe := "codereview-keyring-probe"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, probe)
	return true
}

func (cm *CredentialManager) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(cm.masterKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (cm *CredentialManager) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(cm.masterKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, encryptedData := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, encryptedData, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (cm *CredentialManager) getMasterKey() ([]byte, error) {
	keyPath := filepath.Join(cm.credentialsDir(), ".master")

	data, err := os.ReadFile(keyPath) // #nosec G304 - fixed location under home
	if err == nil {
		if len(data) != saltSize+keySize {
			return nil, fmt.Errorf("invalid master key file size")
		}
		return data[saltSize:], nil
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	key := pbkdf2.Key([]byte(machineID()), salt, pbkdf2Iterations, keySize, sha256.New)

	keyData := append(salt, key...)
	if err := os.MkdirAll(cm.credentialsDir(), common.DirPermissionSecure); err != nil {
		return nil, err
	}
	if err := os.WriteFile(keyPath, keyData, common.FilePermissionSecure); err != nil {
		return nil, err
	}
	return key, nil
}

func machineID() string {
	hostname, _ := os.Hostname()
	homeDir, _ := os.UserHomeDir()
	return fmt.Sprintf("%s-%s-codereview", hostname, homeDir)
}

func (cm *CredentialManager) credentialsDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codereview", "credentials")
}

func (cm *CredentialManager) credentialPath(name string) string {
	return filepath.Join(cm.credentialsDir(), name+".cred")
}

func (cm *CredentialManager) saveCredentialFile(name string, cred *Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cm.credentialsDir(), common.DirPermissionSecure); err != nil {
		return err
	}

	path, err := common.ValidatePath(cm.credentialPath(name), cm.credentialsDir())
	if err != nil {
		return fmt.Errorf("invalid credential file path: %w", err)
	}
	return os.WriteFile(path, data, common.FilePermissionSecure)
}

func (cm *CredentialManager) loadCredentialFile(name string) (*Credential, error) {
	path, err := common.ValidatePath(cm.credentialPath(name), cm.credentialsDir())
	if err != nil {
		return nil, fmt.Errorf("invalid credential file path: %w", err)
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is validated
	if err != nil {
		return nil, fmt.Errorf("credential %q not found: %w", name, err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("malformed credential file for %q: %w", name, err)
	}
	return &cred, nil
}
