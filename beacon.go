package appchains

import (
	"context"
	"net/http"
	"strconv"

	"github.com/adamwoolhether/appchains/client"
)

// Beacon endpoint names.
const (
	BeaconSequencing = "SequencingBeacon"
	BeaconPublic     = "PublicBeacons"
)

// SequencingBeacon asks the Sequencing.com beacon whether allele is present
// at pos on chromosome chrom.
func (c *Client) SequencingBeacon(ctx context.Context, chrom, pos int, allele string) (string, error) {
	return c.Beacon(ctx, BeaconSequencing, beaconParams(chrom, pos, allele))
}

// PublicBeacon asks the public beacons whether allele is present at pos on
// chromosome chrom.
func (c *Client) PublicBeacon(ctx context.Context, chrom, pos int, allele string) (string, error) {
	return c.Beacon(ctx, BeaconPublic, beaconParams(chrom, pos, allele))
}

// Beacon calls the beacon method with params as the query string and
// returns the response body unparsed.
func (c *Client) Beacon(ctx context.Context, method string, params map[string]string) (string, error) {
	u := client.URL(c.cfg.Scheme, c.cfg.BeaconHost, "/"+method+"/",
		client.WithPort(c.cfg.Port),
		client.WithQueryStrings(params),
	)

	req, err := client.Request(ctx, u, http.MethodGet)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Exchange(req)
	if err != nil {
		return "", err
	}

	if err := resp.Expect(http.StatusOK); err != nil {
		return "", err
	}

	return string(resp.Body), nil
}

func beaconParams(chrom, pos int, allele string) map[string]string {
	return map[string]string{
		"chrom":  strconv.Itoa(chrom),
		"pos":    strconv.Itoa(pos),
		"allele": allele,
	}
}
