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
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"io"
	"strings"
	"time"
)

var keyUsageNames = []struct {
	usage x509.KeyUsage
	name  string
}{
	{x509.KeyUsageDigitalSignature, "digitalSignature"},
	{x509.KeyUsageContentCommitment, "contentCommitment"},
	{x509.KeyUsageKeyEncipherment, "keyEncipherment"},
	{x509.KeyUsageDataEncipherment, "dataEncipherment"},
	{x509.KeyUsageKeyAgreement, "keyAgreement"},
	{x509.KeyUsageCertSign, "certSign"},
	{x509.KeyUsageCRLSign, "crlSign"},
}

var extKeyUsageNames = map[x509.ExtKeyUsage]string{
	x509.ExtKeyUsageServerAuth:                     "serverAuth",
	x509.ExtKeyUsageClientAuth:                     "clientAuth",
	x509.ExtKeyUsageCodeSigning:                    "codeSigning",
	x509.ExtKeyUsageEmailProtection:                "emailProtection",
	x509.ExtKeyUsageTimeStamping:                   "timeStamping",
	x509.ExtKeyUsageMicrosoftCommercialCodeSigning: "msCodeCom",
	x509.ExtKeyUsageMicrosoftKernelCodeSigning:     "msKernCode",
}

func keyUsage(cert *x509.Certificate) string {
	var names []string
	for _, ku := range keyUsageNames {
		if cert.KeyUsage&ku.usage != 0 {
			names = append(names, ku.name)
		}
	}
	for _, eku := range cert.ExtKeyUsage {
		if name := extKeyUsageNames[eku]; name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, " ")
}

func publicKeyInfo(cert *x509.Certificate) string {
	switch k := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return fmt.Sprintf("RSA %d bits", k.N.BitLen())
	case *ecdsa.PublicKey:
		return fmt.Sprintf("ECDSA %s", k.Curve.Params().Name)
	default:
		return cert.PublicKeyAlgorithm.String()
	}
}

func printSAN(w io.Writer, cert *x509.Certificate) {
	if len(cert.DNSNames) != 0 || len(cert.EmailAddresses) != 0 || len(cert.IPAddresses) != 0 || len(cert.URIs) != 0 {
		fmt.Fprintln(w, "  Subject alternate names:")
		for _, s := range cert.DNSNames {
			fmt.Fprintln(w, "    dns:"+s)
		}
		for _, s := range cert.EmailAddresses {
			fmt.Fprintln(w, "    email:"+s)
		}
		for _, s := range cert.IPAddresses {
			fmt.Fprintln(w, "    ip:"+s.String())
		}
		for _, s := range cert.URIs {
			fmt.Fprintln(w, "    uri:"+s.String())
		}
	}
}

// FprintCertificate dumps the certificate attributes an operator needs to
// pick a signing certificate.
func FprintCertificate(w io.Writer, cert *x509.Certificate) {
	fmt.Fprintln(w, "Subject:", cert.Subject)
	fmt.Fprintln(w, "Issuer:", cert.Issuer)
	fmt.Fprintln(w, "Serial:", fmt.Sprintf("%x", cert.SerialNumber))
	fmt.Fprintln(w, "Not before:", cert.NotBefore.Local().Format(time.RFC1123))
	fmt.Fprintln(w, "Not after:", cert.NotAfter.Local().Format(time.RFC1123))
	fmt.Fprintln(w, "Public key:", publicKeyInfo(cert))
	fmt.Fprintln(w, "Signature:", cert.SignatureAlgorithm)
	if usage := keyUsage(cert); usage != "" {
		fmt.Fprintln(w, "Key usage:", usage)
	}
	printSAN(w, cert)
}
