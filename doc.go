/*
Package geomap renders the alcohol-origins map from a Google Sheets worksheet and
publishes it to a static-hosting git branch.

geomap can be used from the command line but is really intended to be run from a
cron job (or its own watch mode) to keep the published map in step with the
spreadsheet: runs are idempotent and nothing is committed when neither the
spreadsheet revision nor the rendered content changed.

geomap supports the following commands:

  - build, to fetch the data worksheet and render the site into the output directory
  - publish, to build and push the site to the publish branch, skipping unchanged runs
  - watch, to run the publish pipeline on an interval until interrupted
  - status, to compare the published manifest against the current source
  - get, to download the data worksheet as a CSV/TSV file
  - put, to upload a CSV/TSV dataset file to the data worksheet
  - serve, to preview the rendered site on a local HTTP server
  - authorise, to authorise OAuth2 client credentials for the Sheets and Drive APIs
  - init, to write a commented default geomap.yaml
*/
package geomap
