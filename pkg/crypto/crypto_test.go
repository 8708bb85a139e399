package crypto

import (
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := NewCrypto("test-jwt-secret-for-unit-tests-0123456789")

	tests := []struct {
		name      string
		plaintext string
	}{
		{"普通API Key", "sk-proj-abcdef1234567890"},
		{"包含中文", "密钥-with-中文字符"},
		{"空字符串", ""},
		{"长文本", strings.Repeat("x", 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := c.Encrypt(tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if encrypted == tt.plaintext && tt.plaintext != "" {
				t.Error("密文不应等于明文")
			}

			decrypted, err := c.Decrypt(encrypted)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if decrypted != tt.plaintext {
				t.Errorf("Decrypt() = %q, want %q", decrypted, tt.plaintext)
			}
		})
	}
}

func TestEncryptProducesDifferentCiphertexts(t *testing.T) {
	c := NewCrypto("another-secret")

	// GCM每次使用随机nonce，相同明文密文应不同
	first, err := c.Encrypt("same-input")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Encrypt("same-input")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("两次加密结果相同，nonce未随机化")
	}
}

func TestIsEncrypted(t *testing.T) {
	c := NewCrypto("secret")

	encrypted, err := c.Encrypt("sk-something")
	if err != nil {
		t.Fatal(err)
	}
	if !c.IsEncrypted(encrypted) {
		t.Error("密文应被识别为已加密")
	}
	if c.IsEncrypted("sk-plain-api-key") {
		t.Error("明文API Key不应被识别为已加密")
	}
	if c.IsEncrypted("") {
		t.Error("空串不应被识别为已加密")
	}
}

func TestDecryptRejectsTampered(t *testing.T) {
	c := NewCrypto("secret")

	encrypted, err := c.Encrypt("payload")
	if err != nil {
		t.Fatal(err)
	}

	// 篡改密文最后一个字符
	tampered := encrypted[:len(encrypted)-2] + "AA"
	if _, err := c.Decrypt(tampered); err == nil {
		t.Error("被篡改的密文应解密失败")
	}
}

func TestDifferentSecretsCannotDecrypt(t *testing.T) {
	a := NewCrypto("secret-a-which-is-long-enough")
	b := NewCrypto("secret-b-which-is-long-enough")

	encrypted, err := a.Encrypt("cross-key")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Decrypt(encrypted); err == nil {
		t.Error("使用不同密钥应解密失败")
	}
}
