/*
 * Copyright (c) SAS Institute Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package x509tools

import (
	"crypto"
	"crypto/x509"
	"errors"
	"io"
	"time"
)

// Validity period for throwaway test certificates.
const selfSignExpiry = 365 * 24 * time.Hour

// MakeCodeSigningCert builds a self-signed certificate suitable for
// authenticode test signing: SHA-256 digest, digitalSignature key usage and
// the codeSigning extended usage. The DER encoding of the new certificate is
// returned.
func MakeCodeSigningCert(random io.Reader, key crypto.Signer, subject string) ([]byte, error) {
	name, err := ParseSubject(subject)
	if err != nil {
		return nil, err
	}
	var template x509.Certificate
	template.SerialNumber = MakeSerial()
	if template.SerialNumber == nil {
		return nil, errors.New("failed to generate a serial number")
	}
	template.Subject = name
	template.Issuer = name
	template.SignatureAlgorithm = X509SignatureAlgorithm(key.Public())
	template.NotBefore = time.Now().Add(time.Hour * -24)
	template.NotAfter = time.Now().Add(selfSignExpiry)
	template.KeyUsage = x509.KeyUsageDigitalSignature
	template.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageCodeSigning}
	template.BasicConstraintsValid = true
	ski, err := SubjectKeyID(key.Public())
	if err != nil {
		return nil, err
	}
	template.SubjectKeyId = ski
	return x509.CreateCertificate(random, &template, &template, key.Public(), key)
}

// SelfSigned reports whether the certificate's issuer is its own subject.
func SelfSigned(cert *x509.Certificate) bool {
	return cert.Subject.String() == cert.Issuer.String()
}
