// Package integrationtests exercises whole builds through the session API
// and through taskfiles loaded by the app.
package integrationtests
