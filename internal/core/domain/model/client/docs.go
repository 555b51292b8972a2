// Package client models the customers who place orders and collect loyalty points.
package client
