//go:build windows

package certstore

import (
	"context"
	"crypto"
	"crypto/x509"
	"fmt"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
	"software.sslmate.com/src/go-pkcs12"
)

// wincrypt.h values not exposed by x/sys/windows
const (
	certFriendlyNamePropID = 11
	cryptExportable        = 0x00000001
	pkcs12PreferCNGKSP     = 0x00000100
)

// Transient password protecting the PFX blob between go-pkcs12 and
// PFXImportCertStore. The blob never leaves process memory.
const pfxImportPassword = "authenticode-scripts"

var storeName = []uint16{'M', 'Y', 0}

// sysStore reads the Windows "MY" certificate stores.
type sysStore struct{}

// Open returns a handle to the platform certificate store.
func Open() (Store, error) {
	return &sysStore{}, nil
}

func openScope(location Location, readOnly bool) (windows.Handle, error) {
	var flags uint32
	switch location {
	case CurrentUser:
		flags = windows.CERT_SYSTEM_STORE_CURRENT_USER
	case LocalMachine:
		flags = windows.CERT_SYSTEM_STORE_LOCAL_MACHINE
	default:
		return 0, fmt.Errorf("unknown store location %d", location)
	}
	flags |= windows.CERT_STORE_OPEN_EXISTING_FLAG
	if readOnly {
		flags |= windows.CERT_STORE_READONLY_FLAG
	}
	return windows.CertOpenStore(
		windows.CERT_STORE_PROV_SYSTEM,
		0, 0, flags,
		uintptr(unsafe.Pointer(&storeName[0])),
	)
}

func contextDER(certCtx *windows.CertContext) []byte {
	der := unsafe.Slice(certCtx.EncodedCert, certCtx.Length)
	out := make([]byte, len(der))
	copy(out, der)
	return out
}

func listScope(location Location) ([]*Certificate, error) {
	store, err := openScope(location, true)
	if err != nil {
		return nil, err
	}
	defer windows.CertCloseStore(store, 0)

	var certs []*Certificate
	var certCtx *windows.CertContext
	for {
		certCtx, err = windows.CertEnumCertificatesInStore(store, certCtx)
		if err != nil || certCtx == nil {
			break
		}
		der := contextDER(certCtx)
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			// store entries this package didn't create may not parse;
			// they cannot be selected anyway
			continue
		}
		if !IsCodeSigning(cert) {
			continue
		}
		certs = append(certs, &Certificate{
			Cert:         cert,
			Thumbprint:   Thumbprint(der),
			Location:     location,
			FriendlyName: friendlyName(certCtx),
		})
	}
	return certs, nil
}

func (s *sysStore) List(ctx context.Context) ([]*Certificate, error) {
	certs, err := listScope(CurrentUser)
	if err != nil {
		return nil, fmt.Errorf("opening CurrentUser store: %w", err)
	}
	// the machine store may not be readable by a regular user
	if machine, err := listScope(LocalMachine); err == nil {
		certs = append(certs, machine...)
	}
	return certs, nil
}

func (s *sysStore) ImportSelfSigned(ctx context.Context, key crypto.Signer, certDER []byte) (*Certificate, error) {
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, err
	}
	pfx, err := pkcs12.Modern.Encode(key, cert, nil, pfxImportPassword)
	if err != nil {
		return nil, fmt.Errorf("encoding PFX: %w", err)
	}
	password, err := windows.UTF16PtrFromString(pfxImportPassword)
	if err != nil {
		return nil, err
	}
	blob := windows.CryptDataBlob{
		Size: uint32(len(pfx)),
		Data: &pfx[0],
	}
	pfxStore, err := windows.PFXImportCertStore(&blob, password, cryptExportable|pkcs12PreferCNGKSP)
	if err != nil {
		return nil, fmt.Errorf("importing PFX: %w", err)
	}
	defer windows.CertCloseStore(pfxStore, 0)

	personal, err := openScope(CurrentUser, false)
	if err != nil {
		return nil, fmt.Errorf("opening CurrentUser store: %w", err)
	}
	defer windows.CertCloseStore(personal, 0)

	var certCtx *windows.CertContext
	for {
		certCtx, err = windows.CertEnumCertificatesInStore(pfxStore, certCtx)
		if err != nil || certCtx == nil {
			break
		}
		if err := windows.CertAddCertificateContextToStore(personal, certCtx, windows.CERT_STORE_ADD_REPLACE_EXISTING, nil); err != nil {
			return nil, fmt.Errorf("adding certificate to store: %w", err)
		}
	}
	return &Certificate{
		Cert:       cert,
		Thumbprint: Thumbprint(certDER),
		Location:   CurrentUser,
	}, nil
}

func (s *sysStore) Close() error { return nil }

var (
	modcrypt32                            = windows.NewLazySystemDLL("crypt32.dll")
	procCertGetCertificateContextProperty = modcrypt32.NewProc("CertGetCertificateContextProperty")
)

func friendlyName(certCtx *windows.CertContext) string {
	var size uint32
	ret, _, _ := procCertGetCertificateContextProperty.Call(
		uintptr(unsafe.Pointer(certCtx)),
		certFriendlyNamePropID,
		0,
		uintptr(unsafe.Pointer(&size)),
	)
	if ret == 0 || size < 2 {
		return ""
	}
	buf := make([]uint16, size/2)
	ret, _, _ = procCertGetCertificateContextProperty.Call(
		uintptr(unsafe.Pointer(certCtx)),
		certFriendlyNamePropID,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	if ret == 0 {
		return ""
	}
	// drop the trailing NUL
	if n := len(buf); n > 0 && buf[n-1] == 0 {
		buf = buf[:n-1]
	}
	return string(utf16.Decode(buf))
}
