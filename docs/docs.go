// Package docs holds the OpenAPI description of the JSON endpoints, in the
// layout swag init produces. Regenerate with:
//
//	swag init -g cmd/bookstore/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/cart/add/{bookid}/": {
            "post": {
                "description": "Adds one copy of the book to the session cart. Send X-Requested-With: XMLHttpRequest for a JSON answer.",
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Add a book to the cart",
                "parameters": [
                    {"type": "integer", "description": "Book ID", "name": "bookid", "in": "path", "required": true},
                    {"type": "string", "default": "XMLHttpRequest", "name": "X-Requested-With", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.cartAddResponse"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/cart/update/{bookid}/{quantity}/": {
            "post": {
                "description": "Sets the quantity of a cart line; zero removes it.",
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Update a cart line",
                "parameters": [
                    {"type": "integer", "description": "Book ID", "name": "bookid", "in": "path", "required": true},
                    {"type": "integer", "description": "New quantity", "name": "quantity", "in": "path", "required": true},
                    {"type": "string", "default": "XMLHttpRequest", "name": "X-Requested-With", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.cartUpdateResponse"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/order/paypal/create/": {
            "post": {
                "description": "Creates a PayPal order from the session cart and returns the redirect page URL.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["payment"],
                "summary": "Create a PayPal order",
                "parameters": [
                    {"type": "string", "name": "name", "in": "formData"},
                    {"type": "string", "name": "email", "in": "formData"},
                    {"type": "string", "name": "phone", "in": "formData"},
                    {"type": "string", "name": "address", "in": "formData"},
                    {"type": "string", "name": "country", "in": "formData"},
                    {"type": "string", "name": "zip_code", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.CreatePaymentResponse"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/order/check-payment-status/{order_id}/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["payment"],
                "summary": "Payment status of an order",
                "parameters": [
                    {"type": "integer", "description": "Order ID", "name": "order_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.PaymentStatus"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["ops"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "ok"}}
            }
        }
    },
    "definitions": {
        "main.cartAddResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "success"},
                "message": {"type": "string", "example": "Book added to cart successfully!"},
                "cart_total": {"type": "integer", "example": 3},
                "book_title": {"type": "string", "example": "Things Fall Apart"}
            }
        },
        "main.cartUpdateResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "success"},
                "new_price": {"type": "string", "example": "20.00"},
                "cart_total": {"type": "integer", "example": 3},
                "cart_total_price": {"type": "string", "example": "25.00"}
            }
        },
        "order.CreatePaymentResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "payment_url": {"type": "string", "example": "/order/paypal/payment/42/"},
                "order_id": {"type": "integer", "example": 42},
                "error": {"type": "string"}
            }
        },
        "order.PaymentStatus": {
            "type": "object",
            "properties": {
                "paid": {"type": "boolean", "example": true},
                "order_id": {"type": "integer", "example": 42},
                "transaction_id": {"type": "string", "example": "9AB12345CD678901E"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bookstore API",
	Description:      "JSON endpoints of the bookstore: cart updates and PayPal payment helpers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
