package client

import (
	"encoding/xml"
	"strings"
)

const (
	soapEnvelopeNS  = "http://schemas.xmlsoap.org/soap/envelope/"
	busdoxLocatorNS = "http://busdox.org/serviceMetadata/locator/1.0/"
	bdmslDataNS     = "ec:services:wsdl:BDMSL:data:1.0"

	soapActionCreate  = "http://busdox.org/serviceMetadata/ManageServiceMetadataService/1.0/:createIn"
	soapActionUpdate  = "http://busdox.org/serviceMetadata/ManageServiceMetadataService/1.0/:updateIn"
	soapActionDelete  = "http://busdox.org/serviceMetadata/ManageServiceMetadataService/1.0/:deleteIn"
	soapActionPrepare = "ec:services:wsdl:BDMSL:1.0:prepareChangeCertificate"
)

type requestEnvelope struct {
	XMLName xml.Name    `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    requestBody `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

type requestBody struct {
	Payload any
}

type publisherEndpoint struct {
	LogicalAddress  string `xml:"LogicalAddress"`
	PhysicalAddress string `xml:"PhysicalAddress"`
}

type createServiceMetadataPublisher struct {
	XMLName           xml.Name          `xml:"http://busdox.org/serviceMetadata/locator/1.0/ CreateServiceMetadataPublisherService"`
	PublisherEndpoint publisherEndpoint `xml:"PublisherEndpoint"`
	SMPID             string            `xml:"ServiceMetadataPublisherID"`
}

type updateServiceMetadataPublisher struct {
	XMLName           xml.Name          `xml:"http://busdox.org/serviceMetadata/locator/1.0/ UpdateServiceMetadataPublisherService"`
	PublisherEndpoint publisherEndpoint `xml:"PublisherEndpoint"`
	SMPID             string            `xml:"ServiceMetadataPublisherID"`
}

type deleteServiceMetadataPublisher struct {
	XMLName xml.Name `xml:"http://busdox.org/serviceMetadata/locator/1.0/ ServiceMetadataPublisherID"`
	SMPID   string   `xml:",chardata"`
}

type prepareChangeCertificate struct {
	XMLName                 xml.Name `xml:"ec:services:wsdl:BDMSL:data:1.0 PrepareChangeCertificate"`
	NewCertificatePublicKey string   `xml:"newCertificatePublicKey"`
	MigrationDate           string   `xml:"migrationDate,omitempty"`
}

type responseEnvelope struct {
	XMLName xml.Name     `xml:"Envelope"`
	Body    responseBody `xml:"Body"`
}

type responseBody struct {
	Fault *soapFault `xml:"Fault"`
}

type soapFault struct {
	Code   string      `xml:"faultcode"`
	String string      `xml:"faultstring"`
	Detail faultDetail `xml:"detail"`
}

type faultDetail struct {
	Items []faultItem `xml:",any"`
}

type faultItem struct {
	XMLName xml.Name
	Message string `xml:"FaultMessage"`
}

func marshalEnvelope(payload any) ([]byte, error) {
	body, err := xml.Marshal(requestEnvelope{Body: requestBody{Payload: payload}})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// faultName is the detail element name if present, else the faultcode
// without its namespace prefix.
func (f *soapFault) faultName() string {
	if len(f.Detail.Items) > 0 {
		return f.Detail.Items[0].XMLName.Local
	}
	if _, local, ok := strings.Cut(f.Code, ":"); ok {
		return local
	}
	return f.Code
}

func (f *soapFault) message() string {
	if len(f.Detail.Items) > 0 && strings.TrimSpace(f.Detail.Items[0].Message) != "" {
		return strings.TrimSpace(f.Detail.Items[0].Message)
	}
	return strings.TrimSpace(f.String)
}

func (f *soapFault) category() ErrorCategory {
	switch f.faultName() {
	case "UnauthorizedFault":
		return ErrorAuthentication
	case "NotFoundFault":
		return ErrorNotFound
	case "BadRequestFault":
		return ErrorBadRequest
	default:
		return ErrorRemoteFault
	}
}
