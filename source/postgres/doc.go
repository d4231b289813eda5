// Package postgres reads a customer snapshot from PostgreSQL tables.
//
// The tables are read-only inputs. Column names are fixed:
//
//	customers:    customer_id, region, signup_date
//	products:     product_id, product_name, category, price
//	transactions: transaction_id, customer_id, product_id,
//	              transaction_date, quantity, total_value
//
// Table names are configurable through Tables.
package postgres
